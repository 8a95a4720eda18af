package ranking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// comparisonRequestBody 定义了提交对比结果时请求体的JSON结构
type comparisonRequestBody struct {
	GameAID  uint `json:"game_a_id" binding:"required"`
	GameBID  uint `json:"game_b_id" binding:"required"`
	WinnerID uint `json:"winner_id" binding:"required"`
}

// GetPair 为指定状态下发一对待对比的游戏
func GetPair(c *gin.Context) {
	statusValue, err := status.Get().Validate(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, exhausted, err := PickPair(statusValue)
	if err != nil {
		if errors.Is(err, ErrNotEnoughGames) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配对失败: " + err.Error()})
		return
	}
	if exhausted {
		// 不是错误：说明这一状态的排名已经收敛
		c.JSON(http.StatusOK, gin.H{"message": "该状态下所有可能的配对都已对比过。"})
		return
	}

	c.JSON(http.StatusOK, offer)
}

// SubmitComparisonHandler 处理前端提交的对比结果
func SubmitComparisonHandler(c *gin.Context) {
	statusValue, err := status.Get().Validate(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body comparisonRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	err = SubmitComparison(statusValue, body.GameAID, body.GameBID, body.WinnerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrWinnerNotInPair), errors.Is(err, ErrPairFinalized):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "处理对比失败: " + err.Error()})
		}
		return
	}

	// ELO分数变动会影响洞察里的平均分和性价比榜单
	database.DropInsightCache()
	c.JSON(http.StatusOK, gin.H{"message": "对比结果已记录。"})
}

// GetRankingTable 返回指定状态下按ELO降序排列的游戏列表
func GetRankingTable(c *gin.Context) {
	statusValue, err := status.Get().Validate(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := RankingTable(statusValue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询排名失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, table)
}
