package ranking

import "time"

// Comparison 记录一次两两对比的结果
// 同一状态下的一对游戏至多存在一行；(game_a_id, game_b_id)按升序规范化存储，
// 配合唯一索引把并发提交同一对的竞争转化为可检测的约束冲突
type Comparison struct {
	ID uint `gorm:"primaryKey"`

	// Status 是被排名的状态分组
	Status string `gorm:"not null;uniqueIndex:idx_comparison_pair"`

	// GameAID < GameBID 恒成立
	GameAID uint `gorm:"not null;uniqueIndex:idx_comparison_pair"`
	GameBID uint `gorm:"not null;uniqueIndex:idx_comparison_pair"`

	// WinnerID 为空表示该对比尚未定胜负；一旦写入即不可再改
	WinnerID *uint

	CreatedAt time.Time
}

// DTO 是对比记录的对外表示
type DTO struct {
	ID        uint   `json:"id"`
	Status    string `json:"status"`
	GameAID   uint   `json:"game_a_id"`
	GameBID   uint   `json:"game_b_id"`
	WinnerID  *uint  `json:"winner_id"`
	CreatedAt string `json:"created_at"`
}

// ToDTO 将模型转换为对外表示
func (cmp *Comparison) ToDTO() DTO {
	return DTO{
		ID:        cmp.ID,
		Status:    cmp.Status,
		GameAID:   cmp.GameAID,
		GameBID:   cmp.GameBID,
		WinnerID:  cmp.WinnerID,
		CreatedAt: cmp.CreatedAt.Format(time.RFC3339),
	}
}
