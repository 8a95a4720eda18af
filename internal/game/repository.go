package game

import (
	"fmt"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
	"gorm.io/gorm"
)

// GetAllGames 返回全部游戏，按ELO分数降序、标题升序排列
func GetAllGames() ([]Game, error) {
	var games []Game
	if err := database.DB.Order("elo_rating desc, title asc").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("无法查询游戏列表: %w", err)
	}
	return games, nil
}

// GetGamesByStatus 返回指定状态下的全部游戏
func GetGamesByStatus(statusValue string) ([]Game, error) {
	var games []Game
	if err := database.DB.Where("status = ?", statusValue).Find(&games).Error; err != nil {
		return nil, fmt.Errorf("无法按状态查询游戏: %w", err)
	}
	return games, nil
}

// GetGameByID 按主键查询单个游戏
func GetGameByID(id uint) (*Game, error) {
	var g Game
	if err := database.DB.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// TitleExists 判断标题是否已被占用（排除excludeID对应的行）
func TitleExists(title string, excludeID uint) (bool, error) {
	var count int64
	query := database.DB.Model(&Game{}).Where("title = ?", title)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// normalizeExistingStatuses 把库中所有不在状态表里的状态值改写为默认状态
// 状态表在版本间演化过，启动时做一次规范化以兼容旧数据
func normalizeExistingStatuses(db *gorm.DB) (int64, error) {
	registry := status.Get()
	result := db.Model(&Game{}).
		Where("status NOT IN ?", registry.Values()).
		Update("status", registry.Default())
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PrimeDB 负责初始化game模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Game{}); err != nil {
		return fmt.Errorf("无法迁移game表: %w", err)
	}
	fmt.Println("Game数据库表迁移成功。")

	migrated, err := normalizeExistingStatuses(database.DB)
	if err != nil {
		return fmt.Errorf("规范化历史状态失败: %w", err)
	}
	if migrated > 0 {
		fmt.Printf("已将 %d 个游戏的历史状态规范化为默认状态。\n", migrated)
	}
	return nil
}
