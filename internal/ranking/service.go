package ranking

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotEnoughGames 表示该状态下的游戏不足两个，无法开始对比
	ErrNotEnoughGames = errors.New("游戏数量不足，请先添加更多游戏再开始对比。")

	// ErrGameNotFound 表示提交的游戏ID在库中不存在
	ErrGameNotFound = errors.New("找不到参与对比的游戏。")

	// ErrWinnerNotInPair 表示胜者ID不属于提交的这对游戏
	ErrWinnerNotInPair = errors.New("胜者必须是参与对比的两个游戏之一。")

	// ErrPairFinalized 表示这对游戏在该状态下已经定过胜负
	ErrPairFinalized = errors.New("这对游戏已经对比过了。")
)

// PairOffer 是一次待对比的配对
// PairID 只是本次下发的不透明标识，便于前端做请求去重
type PairOffer struct {
	PairID string   `json:"pair_id"`
	GameA  game.DTO `json:"game_a"`
	GameB  game.DTO `json:"game_b"`
}

// PickPair 为指定状态随机选出一对尚未对比过的游戏
// 所有配对都已对比时返回 (nil, true, nil)，与错误区分开
func PickPair(statusValue string) (*PairOffer, bool, error) {
	games, err := game.GetGamesByStatus(statusValue)
	if err != nil {
		return nil, false, err
	}
	if len(games) < 2 {
		return nil, false, ErrNotEnoughGames
	}

	var existing []Comparison
	if err := database.DB.Where("status = ?", statusValue).Find(&existing).Error; err != nil {
		return nil, false, fmt.Errorf("无法查询已有对比记录: %w", err)
	}

	candidates := availablePairs(games, existing)
	if len(candidates) == 0 {
		return nil, true, nil
	}

	picked := candidates[rand.Intn(len(candidates))]
	pairID, err := uuid.NewV7()
	if err != nil {
		pairID = uuid.New()
	}

	return &PairOffer{
		PairID: pairID.String(),
		GameA:  picked[0].ToDTO(),
		GameB:  picked[1].ToDTO(),
	}, false, nil
}

// SubmitComparison 记录一次对比结果并更新双方的ELO分数
// 配对存在性检查、胜负写入和两次ELO更新在同一个事务中提交，
// 保证不会出现只更新了一半分数的中间状态
func SubmitComparison(statusValue string, gameAID, gameBID, winnerID uint) error {
	if winnerID != gameAID && winnerID != gameBID {
		return ErrWinnerNotInPair
	}
	if gameAID == gameBID {
		return ErrWinnerNotInPair
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		var gameA, gameB game.Game

		// 在事务中锁定两行游戏记录，防止并发对比互相覆盖分数
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gameA, gameAID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&gameB, gameBID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGameNotFound
			}
			return err
		}

		// 1. 规范化配对并检查是否已定胜负
		pair := canonicalPair(gameA.ID, gameB.ID)
		var existing Comparison
		err := tx.Where("status = ? AND game_a_id = ? AND game_b_id = ?",
			statusValue, pair.Low, pair.High).First(&existing).Error
		switch {
		case err == nil:
			if existing.WinnerID != nil {
				return ErrPairFinalized
			}
			existing.WinnerID = &winnerID
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			newComparison := Comparison{
				Status:   statusValue,
				GameAID:  pair.Low,
				GameBID:  pair.High,
				WinnerID: &winnerID,
			}
			// 并发提交同一对时，唯一索引会让后到的事务在这里失败回滚
			if err := tx.Create(&newComparison).Error; err != nil {
				return fmt.Errorf("保存对比记录失败: %w", err)
			}
		default:
			return err
		}

		// 2. 根据胜者更新双方的ELO分数
		if winnerID == gameA.ID {
			gameA.EloRating, gameB.EloRating = calculateElo(gameA.EloRating, gameB.EloRating)
		} else {
			gameB.EloRating, gameA.EloRating = calculateElo(gameB.EloRating, gameA.EloRating)
		}

		// 3. 保存对两个游戏的更新
		if err := tx.Save(&gameA).Error; err != nil {
			return err
		}
		if err := tx.Save(&gameB).Error; err != nil {
			return err
		}

		return nil
	})
}

// RankingTable 返回指定状态下按ELO降序排列的游戏列表
func RankingTable(statusValue string) ([]game.DTO, error) {
	var games []game.Game
	if err := database.DB.Where("status = ?", statusValue).
		Order("elo_rating desc, title asc").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("无法查询排名: %w", err)
	}

	payload := make([]game.DTO, 0, len(games))
	for i := range games {
		payload = append(payload, games[i].ToDTO())
	}
	return payload, nil
}

// PrimeDB 负责初始化ranking模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Comparison{}); err != nil {
		return fmt.Errorf("无法迁移comparison表: %w", err)
	}
	fmt.Println("Comparison数据库表迁移成功。")
	return nil
}
