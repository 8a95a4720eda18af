package ranking

import (
	"math"
	"testing"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
)

func TestExpectedScoreComplements(t *testing.T) {
	cases := []struct {
		name     string
		ratingA  float64
		ratingB  float64
		expected float64
	}{
		{"equal ratings", 1500, 1500, 0.5},
		{"400 point gap", 1900, 1500, 10.0 / 11.0},
		{"underdog", 1500, 1900, 1.0 / 11.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := expectedScore(tc.ratingA, tc.ratingB)
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("expectedScore(%v, %v) = %v, want %v", tc.ratingA, tc.ratingB, got, tc.expected)
			}
			sum := got + expectedScore(tc.ratingB, tc.ratingA)
			if math.Abs(sum-1.0) > 1e-9 {
				t.Errorf("expected scores should sum to 1, got %v", sum)
			}
		})
	}
}

func TestCalculateEloMovesRatingsInOppositeDirections(t *testing.T) {
	newWinner, newLoser := calculateElo(1500, 1500)

	if newWinner <= 1500 {
		t.Errorf("winner rating should rise, got %v", newWinner)
	}
	if newLoser >= 1500 {
		t.Errorf("loser rating should fall, got %v", newLoser)
	}
	// 对等分数下的变动量恰好是 K/2
	if math.Abs(newWinner-1516) > 1e-9 || math.Abs(newLoser-1484) > 1e-9 {
		t.Errorf("equal ratings should move by K/2: got %v / %v", newWinner, newLoser)
	}
}

func TestCalculateEloIsZeroSum(t *testing.T) {
	winner, loser := 1720.0, 1480.0
	newWinner, newLoser := calculateElo(winner, loser)

	before := winner + loser
	after := newWinner + newLoser
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("total rating should be conserved: before %v, after %v", before, after)
	}
}

func TestCalculateEloUpsetMovesMore(t *testing.T) {
	// 低分赢高分时，分数变动应大于高分赢低分
	upsetWinner, _ := calculateElo(1400, 1700)
	favoriteWinner, _ := calculateElo(1700, 1400)

	upsetGain := upsetWinner - 1400
	favoriteGain := favoriteWinner - 1700
	if upsetGain <= favoriteGain {
		t.Errorf("upset gain %v should exceed favorite gain %v", upsetGain, favoriteGain)
	}
}

func TestCanonicalPairOrdersIDs(t *testing.T) {
	if got := canonicalPair(7, 3); got != (pairKey{Low: 3, High: 7}) {
		t.Errorf("canonicalPair(7, 3) = %+v", got)
	}
	if canonicalPair(3, 7) != canonicalPair(7, 3) {
		t.Error("canonical pair should be order-independent")
	}
}

func TestAvailablePairsExhaustsAllCombinations(t *testing.T) {
	games := []game.Game{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	pairs := availablePairs(games, nil)
	if len(pairs) != 6 {
		t.Fatalf("4 games should yield 6 pairs, got %d", len(pairs))
	}

	seen := make(map[pairKey]bool)
	for _, pair := range pairs {
		key := canonicalPair(pair[0].ID, pair[1].ID)
		if seen[key] {
			t.Errorf("duplicate pair %+v", key)
		}
		seen[key] = true
	}
}

func TestAvailablePairsSkipsComparedOnes(t *testing.T) {
	games := []game.Game{{ID: 1}, {ID: 2}, {ID: 3}}
	existing := []Comparison{
		{GameAID: 1, GameBID: 2},
		{GameAID: 1, GameBID: 3},
	}

	pairs := availablePairs(games, existing)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 remaining pair, got %d", len(pairs))
	}
	key := canonicalPair(pairs[0][0].ID, pairs[0][1].ID)
	if key != (pairKey{Low: 2, High: 3}) {
		t.Errorf("remaining pair should be (2,3), got %+v", key)
	}
}

func TestAvailablePairsEmptyWhenExhausted(t *testing.T) {
	games := []game.Game{{ID: 1}, {ID: 2}}
	existing := []Comparison{{GameAID: 2, GameBID: 1}}

	if pairs := availablePairs(games, existing); len(pairs) != 0 {
		t.Errorf("expected no pairs, got %d", len(pairs))
	}
}
