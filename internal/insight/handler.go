package insight

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetGenrePreferences 处理 GET /api/insights/genres
func GetGenrePreferences(c *gin.Context) {
	summary, err := GeneratePreferenceSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成类型偏好分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetGenreSentiment 处理 GET /api/insights/genre-sentiment
func GetGenreSentiment(c *gin.Context) {
	summary, err := GenerateGenreSentimentSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成类型体验分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetGenreInterest 处理 GET /api/insights/genre-interest
func GetGenreInterest(c *gin.Context) {
	summary, err := GenerateInterestSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成兴趣对照分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// parseLimitQuery 解析可选的limit查询参数，0表示使用默认值
func parseLimitQuery(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 必须是非负整数。"})
		return 0, false
	}
	return limit, true
}

// parseDateQuery 解析可选的YYYY-MM-DD日期查询参数
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " 的格式必须是 YYYY-MM-DD。"})
		return nil, false
	}
	return &parsed, true
}

// GetLifecycleMetrics 处理 GET /api/insights/lifecycle
func GetLifecycleMetrics(c *gin.Context) {
	limit, ok := parseLimitQuery(c)
	if !ok {
		return
	}
	summary, err := GenerateLifecycleSummary(time.Now().UTC().Truncate(24*time.Hour), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成生命周期分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetPriceInsights 处理 GET /api/insights/price
func GetPriceInsights(c *gin.Context) {
	limit, ok := parseLimitQuery(c)
	if !ok {
		return
	}
	summary, err := GeneratePriceSummary(time.Now().UTC().Truncate(24*time.Hour), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成价格分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetEngagementTrend 处理 GET /api/insights/engagement-trend
func GetEngagementTrend(c *gin.Context) {
	start, ok := parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	summary, err := GenerateTrendSummary(c.DefaultQuery("period", "month"), start, end)
	if err != nil {
		if errors.Is(err, ErrUnsupportedPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成游玩趋势分析失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
