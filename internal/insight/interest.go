package insight

import (
	"sort"

	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// BucketInterest 是单个分组内的兴趣指标
type BucketInterest struct {
	AverageElo *float64 `json:"average_elo"`
	Share      float64  `json:"share"`
	Count      int      `json:"count"`
}

// InterestView 是一个类型的兴趣侧视图
type InterestView struct {
	AverageElo *float64 `json:"average_elo"`

	// InterestScore 把平均ELO压缩到0-5左右的量级 (average_elo / 20)
	InterestScore *float64 `json:"interest_score"`

	Buckets map[string]BucketInterest `json:"buckets"`
}

// GenreInterestEntry 把同一类型的兴趣（ELO）与享受（情感）并列
type GenreInterestEntry struct {
	Genre     string              `json:"genre"`
	Interest  InterestView        `json:"interest"`
	Sentiment GenreSentimentEntry `json:"sentiment"`
}

// InterestSummary 是兴趣-享受合并视图的完整输出
type InterestSummary struct {
	GeneratedAt string               `json:"generated_at"`
	Genres      []GenreInterestEntry `json:"genres"`
}

// BuildGenreInterestSentiment 合并类型偏好与类型情感两个视图
// 只输出在情感聚合中出现过的类型；纯合并，不重新计算任何指标
func BuildGenreInterestSentiment(preferences PreferenceSummary, sentiments GenreSentimentSummary, registry *status.Registry) InterestSummary {
	preferenceLookup := make(map[string]CombinedGenreEntry, len(preferences.Genres))
	for _, entry := range preferences.Genres {
		preferenceLookup[entry.Genre] = entry
	}

	buckets := registry.Buckets()
	entries := make([]GenreInterestEntry, 0, len(sentiments.Genres))
	for _, sentimentEntry := range sentiments.Genres {
		preferenceEntry, hasPreference := preferenceLookup[sentimentEntry.Genre]

		view := InterestView{
			Buckets: make(map[string]BucketInterest, len(buckets)),
		}
		if hasPreference {
			view.AverageElo = preferenceEntry.Total.AverageElo
			if view.AverageElo != nil {
				view.InterestScore = floatPtr(*view.AverageElo / 20.0)
			}
		}
		for _, bucket := range buckets {
			interest := BucketInterest{}
			if hasPreference {
				if metrics, ok := preferenceEntry.Buckets[bucket.ID]; ok {
					interest.AverageElo = metrics.AverageElo
					interest.Share = metrics.Share
					interest.Count = metrics.Count
				}
			}
			view.Buckets[bucket.ID] = interest
		}

		entries = append(entries, GenreInterestEntry{
			Genre:     sentimentEntry.Genre,
			Interest:  view,
			Sentiment: sentimentEntry,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Sentiment.TotalPlaytimeMinutes > entries[j].Sentiment.TotalPlaytimeMinutes
	})

	return InterestSummary{Genres: entries}
}
