package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"gorm.io/gorm"
)

// purgeRequestBody 定义了清空数据请求的JSON结构
type purgeRequestBody struct {
	Confirmation string `json:"confirmation"`
}

// PurgeData 处理 POST /api/settings/purge-data
// 删除全部游戏、会话和对比记录，要求显式确认以防误触。
func PurgeData(c *gin.Context) {
	var body purgeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据"})
		return
	}
	if body.Confirmation != "DELETE" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请输入 DELETE 以确认清空所有数据。"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 先删依赖方，再删游戏本体
		if err := tx.Exec("DELETE FROM session_logs").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM comparisons").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM games").Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "清空数据失败"})
		return
	}

	database.DropInsightCache()

	c.JSON(http.StatusOK, gin.H{"message": "所有数据已清空。"})
}
