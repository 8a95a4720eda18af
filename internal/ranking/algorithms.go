package ranking

import (
	"math"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
)

// eloKFactor 是ELO算法中的K值，它决定了每次对比后分数变化的大小。
// 值越高，分数变化越剧烈。32是一个常用的标准值。
const eloKFactor = 32

// expectedScore 计算ratingA对ratingB的期望胜率
// expectedScore(a, b) + expectedScore(b, a) 恒等于1
func expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// calculateElo 计算对比后的新ELO分数
// 它接受胜者和败者的当前分数，返回他们的新分数
func calculateElo(winnerRating, loserRating float64) (newWinnerRating, newLoserRating float64) {
	// 1. 计算双方的期望胜率
	expectedWinner := expectedScore(winnerRating, loserRating)
	expectedLoser := expectedScore(loserRating, winnerRating)

	// 2. 根据实际结果(胜=1, 负=0)和期望胜率，更新分数
	newWinnerRating = winnerRating + eloKFactor*(1-expectedWinner)
	newLoserRating = loserRating + eloKFactor*(0-expectedLoser)

	return
}

// pairKey 是一对游戏ID的规范形式，小的在前
type pairKey struct {
	Low  uint
	High uint
}

// canonicalPair 将任意顺序的ID对规范化为小ID在前
func canonicalPair(a, b uint) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{Low: a, High: b}
}

// availablePairs 生成所有尚未出现在对比记录中的无序游戏对
// 对G个游戏，全部无序对共 G*(G-1)/2 个
func availablePairs(games []game.Game, existing []Comparison) [][2]*game.Game {
	compared := make(map[pairKey]bool, len(existing))
	for _, cmp := range existing {
		compared[canonicalPair(cmp.GameAID, cmp.GameBID)] = true
	}

	var candidates [][2]*game.Game
	for i := range games {
		for j := i + 1; j < len(games); j++ {
			if compared[canonicalPair(games[i].ID, games[j].ID)] {
				continue
			}
			candidates = append(candidates, [2]*game.Game{&games[i], &games[j]})
		}
	}
	return candidates
}
