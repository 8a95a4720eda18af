package insight

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// readCache 尝试用缓存填充dest，命中返回true。
// Redis不健康时直接跳过缓存，洞察结果总是可以现场重算。
func readCache(field string, dest any) bool {
	if !database.IsRedisHealthy() {
		return false
	}
	payload, err := GetCachedPayload(field)
	if err != nil || payload == nil {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

// writeCacheAsync 异步地把结果写回缓存，不阻塞请求。
func writeCacheAsync(field string, payload any) {
	if !database.IsRedisHealthy() {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("严重错误: 缓存洞察结果的goroutine发生panic: %v\n", r)
			}
		}()
		_ = SetCachedPayload(field, payload, CacheTTL)
	}()
}

func generatedNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// GeneratePreferenceSummary 生成按分组聚合的类型偏好画像。
func GeneratePreferenceSummary() (*PreferenceSummary, error) {
	const field = "genres"
	var cached PreferenceSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}

	summary := SummarizeGenrePreferences(games, status.Get(), ConfiguredOptions())
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

// GenerateGenreSentimentSummary 生成按类型聚合的加权体验画像。
func GenerateGenreSentimentSummary() (*GenreSentimentSummary, error) {
	const field = "genre-sentiment"
	var cached GenreSentimentSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}
	sessions, err := session.GetAllSessions()
	if err != nil {
		return nil, fmt.Errorf("无法获取会话列表: %w", err)
	}

	summary := SummarizeGenreSentiment(sessions, games, status.Get(), ConfiguredOptions())
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

// GenerateInterestSummary 把兴趣（Elo）和实际体验合并成一张对照表。
func GenerateInterestSummary() (*InterestSummary, error) {
	const field = "genre-interest"
	var cached InterestSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}
	sessions, err := session.GetAllSessions()
	if err != nil {
		return nil, fmt.Errorf("无法获取会话列表: %w", err)
	}

	registry := status.Get()
	opts := ConfiguredOptions()
	preferences := SummarizeGenrePreferences(games, registry, opts)
	sentiments := SummarizeGenreSentiment(sessions, games, registry, opts)
	summary := BuildGenreInterestSentiment(preferences, sentiments, registry)
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

// GenerateLifecycleSummary 生成生命周期间隔统计和积压老化列表。
func GenerateLifecycleSummary(today time.Time, limit int) (*LifecycleSummary, error) {
	if limit <= 0 {
		limit = ConfiguredOptions().BacklogLimit
	}
	field := fmt.Sprintf("lifecycle:%s:%d", today.Format("2006-01-02"), limit)
	var cached LifecycleSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}

	summary := SummarizeLifecycleMetrics(games, status.Get(), today, limit)
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

// GeneratePriceSummary 生成价格、性价比和省钱洞察。
func GeneratePriceSummary(today time.Time, limit int) (*PriceSummary, error) {
	opts := ConfiguredOptions()
	if limit <= 0 {
		limit = opts.PriceLimit
	}
	field := fmt.Sprintf("price:%s:%d", today.Format("2006-01-02"), limit)
	var cached PriceSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}
	sessions, err := session.GetAllSessions()
	if err != nil {
		return nil, fmt.Errorf("无法获取会话列表: %w", err)
	}

	summary := SummarizePriceInsights(games, sessions, status.Get(), today, limit, opts)
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

// GenerateTrendSummary 生成按窗口聚合的游玩趋势和callout。
func GenerateTrendSummary(period string, start, end *time.Time) (*TrendSummary, error) {
	field := fmt.Sprintf("trend:%s:%s:%s", period, cacheDateToken(start), cacheDateToken(end))
	var cached TrendSummary
	if readCache(field, &cached) {
		return &cached, nil
	}

	games, err := game.GetAllGames()
	if err != nil {
		return nil, fmt.Errorf("无法获取游戏列表: %w", err)
	}
	sessions, err := session.GetSessionsInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("无法获取会话列表: %w", err)
	}

	summary, err := SummarizeEngagementTrend(sessions, games, period, start, end, ConfiguredOptions())
	if err != nil {
		return nil, err
	}
	summary.GeneratedAt = generatedNow()
	writeCacheAsync(field, &summary)
	return &summary, nil
}

func cacheDateToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}
