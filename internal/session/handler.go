package session

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"gorm.io/gorm"
)

// sessionRequestBody 定义了记录会话时请求体的JSON结构
type sessionRequestBody struct {
	GameID          *uint   `json:"game_id"`
	GameTitle       string  `json:"game_title"`
	SessionDate     string  `json:"session_date"`
	PlaytimeMinutes int     `json:"playtime_minutes"`
	Sentiment       string  `json:"sentiment"`
	Comment         *string `json:"comment"`
}

// 会话录入只接受这三个标签；洞察聚合对标签的容忍度更高
var recognizedSentiments = map[string]bool{
	"good":     true,
	"mediocre": true,
	"bad":      true,
}

// ListSessions 返回全部会话记录
func ListSessions(c *gin.Context) {
	sessions, err := GetAllSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询会话列表失败: " + err.Error()})
		return
	}

	payload := make([]DTO, 0, len(sessions))
	for i := range sessions {
		payload = append(payload, sessions[i].ToDTO())
	}
	c.JSON(http.StatusOK, payload)
}

// CreateSession 记录一条新的游玩会话
func CreateSession(c *gin.Context) {
	var body sessionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if body.PlaytimeMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "游玩时长必须是正数（分钟）。"})
		return
	}

	sentiment := strings.ToLower(strings.TrimSpace(body.Sentiment))
	if !recognizedSentiments[sentiment] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "体验标签必须是 good、mediocre 或 bad。"})
		return
	}

	sessionDate, err := time.Parse("2006-01-02", strings.TrimSpace(body.SessionDate))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "会话日期格式无效，应为YYYY-MM-DD。"})
		return
	}

	// 提交了game_id时以库中的标题为准
	gameTitle := strings.TrimSpace(body.GameTitle)
	if body.GameID != nil {
		if g, err := game.GetGameByID(*body.GameID); err == nil {
			gameTitle = g.Title
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "查询游戏失败: " + err.Error()})
			return
		}
	}
	if gameTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "游戏标题不能为空。"})
		return
	}

	var comment *string
	if body.Comment != nil {
		if trimmed := strings.TrimSpace(*body.Comment); trimmed != "" {
			comment = &trimmed
		}
	}

	newSession := SessionLog{
		GameID:          body.GameID,
		GameTitle:       gameTitle,
		SessionDate:     sessionDate,
		PlaytimeMinutes: body.PlaytimeMinutes,
		Sentiment:       sentiment,
		Comment:         comment,
	}
	if err := database.DB.Create(&newSession).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存会话失败: " + err.Error()})
		return
	}

	database.DropInsightCache()
	c.JSON(http.StatusCreated, newSession.ToDTO())
}

// DeleteSession 删除一条会话记录
func DeleteSession(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的会话ID。"})
		return
	}

	var existing SessionLog
	if err := database.DB.First(&existing, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "找不到该会话记录。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询会话失败: " + err.Error()})
		return
	}

	if err := database.DB.Delete(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除会话失败: " + err.Error()})
		return
	}

	database.DropInsightCache()
	c.JSON(http.StatusOK, gin.H{"message": "会话记录已删除。"})
}
