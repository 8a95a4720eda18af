package session

import (
	"fmt"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
)

// GetAllSessions 返回全部会话记录，按日期降序
func GetAllSessions() ([]SessionLog, error) {
	var sessions []SessionLog
	if err := database.DB.Order("session_date desc, id desc").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("无法查询会话列表: %w", err)
	}
	return sessions, nil
}

// GetSessionsInRange 返回指定日期区间内的会话记录（端点包含，nil表示不限制）
func GetSessionsInRange(start, end *time.Time) ([]SessionLog, error) {
	query := database.DB.Order("session_date asc, id asc")
	if start != nil {
		query = query.Where("session_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("session_date <= ?", *end)
	}

	var sessions []SessionLog
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("无法按日期区间查询会话: %w", err)
	}
	return sessions, nil
}

// PrimeDB 负责初始化session模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&SessionLog{}); err != nil {
		return fmt.Errorf("无法迁移session表: %w", err)
	}
	fmt.Println("SessionLog数据库表迁移成功。")
	return nil
}
