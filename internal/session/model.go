package session

import (
	"strings"
	"time"
)

// SessionLog 定义了一条游玩会话记录
type SessionLog struct {
	ID uint `gorm:"primaryKey"`

	// GameID 是指向游戏的弱引用
	// 游戏被删除时置空而不是级联删除，靠GameTitle兜底关联
	GameID *uint `gorm:"index"`

	// GameTitle 是冗余存储的游戏标题，作为GameID缺失时的备用关联键
	GameTitle string `gorm:"not null"`

	SessionDate     time.Time `gorm:"type:date;not null"`
	PlaytimeMinutes int       `gorm:"not null"`

	// Sentiment 是本次游玩的体验标签，如 good / mediocre / bad
	Sentiment string `gorm:"not null"`

	Comment *string

	CreatedAt time.Time
}

// SentimentLabel 返回小写规范化后的体验标签
// 它和 Minutes 一起满足洞察模块的情感样本接口
func (s *SessionLog) SentimentLabel() string {
	return strings.ToLower(strings.TrimSpace(s.Sentiment))
}

// Minutes 返回游玩时长（分钟）
func (s *SessionLog) Minutes() float64 {
	return float64(s.PlaytimeMinutes)
}

// DTO 是会话记录的对外表示
type DTO struct {
	ID              uint    `json:"id"`
	GameID          *uint   `json:"game_id"`
	GameTitle       string  `json:"game_title"`
	SessionDate     string  `json:"session_date"`
	PlaytimeMinutes int     `json:"playtime_minutes"`
	Sentiment       string  `json:"sentiment"`
	Comment         *string `json:"comment"`
	CreatedAt       string  `json:"created_at"`
}

// ToDTO 将模型转换为对外表示
func (s *SessionLog) ToDTO() DTO {
	return DTO{
		ID:              s.ID,
		GameID:          s.GameID,
		GameTitle:       s.GameTitle,
		SessionDate:     s.SessionDate.Format("2006-01-02"),
		PlaytimeMinutes: s.PlaytimeMinutes,
		Sentiment:       s.Sentiment,
		Comment:         s.Comment,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}
