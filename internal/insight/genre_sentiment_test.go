package insight

import (
	"testing"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
)

func newSession(gameID *uint, title string, d time.Time, minutes int, sentiment string) session.SessionLog {
	return session.SessionLog{
		GameID:          gameID,
		GameTitle:       title,
		SessionDate:     d,
		PlaytimeMinutes: minutes,
		Sentiment:       sentiment,
	}
}

func uintPtr(v uint) *uint { return &v }

func TestGenreSentimentSplitsMinutesAcrossGenres(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Dual", "playing", 1500, "RPG", "Strategy"),
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(1), "Dual", day(2023, 5, 1), 120, "good"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if len(summary.Genres) != 2 {
		t.Fatalf("genres: got %d, want 2", len(summary.Genres))
	}
	for _, entry := range summary.Genres {
		if !almostEqual(entry.TotalPlaytimeMinutes, 60) {
			t.Errorf("%s minutes: got %v, want 60", entry.Genre, entry.TotalPlaytimeMinutes)
		}
		if entry.WeightedSentiment == nil || !almostEqual(*entry.WeightedSentiment, 100) {
			t.Errorf("%s sentiment: got %v, want 100", entry.Genre, entry.WeightedSentiment)
		}
		if entry.SessionCount != 1 {
			t.Errorf("%s session count: got %d, want 1", entry.Genre, entry.SessionCount)
		}
	}
}

func TestGenreSentimentFallsBackToTitleJoin(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Orphaned", "playing", 1500, "RPG"),
	}
	sessions := []session.SessionLog{
		// game_id 已失效，但冗余标题还能关联上
		newSession(nil, "Orphaned", day(2023, 5, 1), 90, "mediocre"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if len(summary.Genres) != 1 {
		t.Fatalf("genres: got %d, want 1", len(summary.Genres))
	}
	entry := summary.Genres[0]
	if entry.WeightedSentiment == nil || !almostEqual(*entry.WeightedSentiment, 50) {
		t.Errorf("sentiment: got %v, want 50", entry.WeightedSentiment)
	}
}

func TestGenreSentimentDropsUnresolvableSessions(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Known", "playing", 1500, "RPG"),
	}
	sessions := []session.SessionLog{
		newSession(nil, "Unknown Title", day(2023, 5, 1), 60, "good"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if len(summary.Genres) != 0 {
		t.Errorf("unresolvable session should be dropped, got %d genres", len(summary.Genres))
	}
}

func TestGenreSentimentDropsGamesWithoutGenres(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Genreless", "playing", 1500),
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(1), "Genreless", day(2023, 5, 1), 60, "good"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if len(summary.Genres) != 0 {
		t.Errorf("session on a genreless game should be dropped, got %d genres", len(summary.Genres))
	}
}

func TestGenreSentimentPerBucketBreakdown(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Active", "playing", 1500, "RPG"),
		newGame(2, "Done", "full_clear", 1600, "RPG"),
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(1), "Active", day(2023, 5, 1), 60, "bad"),
		newSession(uintPtr(2), "Done", day(2023, 5, 2), 60, "good"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if len(summary.Genres) != 1 {
		t.Fatalf("genres: got %d, want 1", len(summary.Genres))
	}
	entry := summary.Genres[0]
	if entry.WeightedSentiment == nil || !almostEqual(*entry.WeightedSentiment, 50) {
		t.Errorf("overall sentiment: got %v, want 50", entry.WeightedSentiment)
	}

	playing := entry.Buckets["playing"]
	if playing.WeightedSentiment == nil || !almostEqual(*playing.WeightedSentiment, 0) {
		t.Errorf("playing sentiment: got %v, want 0", playing.WeightedSentiment)
	}
	fullClear := entry.Buckets["full_clear"]
	if fullClear.WeightedSentiment == nil || !almostEqual(*fullClear.WeightedSentiment, 100) {
		t.Errorf("full_clear sentiment: got %v, want 100", fullClear.WeightedSentiment)
	}
}

func TestGenreSentimentSortedByPlaytime(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "Big", "playing", 1500, "RPG"),
		newGame(2, "Small", "playing", 1500, "Puzzle"),
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(2), "Small", day(2023, 5, 1), 30, "good"),
		newSession(uintPtr(1), "Big", day(2023, 5, 1), 300, "good"),
	}

	summary := SummarizeGenreSentiment(sessions, games, registry, DefaultOptions())

	if summary.Genres[0].Genre != "RPG" {
		t.Errorf("heaviest genre first: got %q, want RPG", summary.Genres[0].Genre)
	}
}

func TestGenreInterestMergesPreferenceAndSentiment(t *testing.T) {
	registry := newTestRegistry(t)
	games := []game.Game{
		newGame(1, "A", "playing", 1600, "RPG"),
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(1), "A", day(2023, 5, 1), 120, "good"),
	}

	opts := DefaultOptions()
	preferences := SummarizeGenrePreferences(games, registry, opts)
	sentiments := SummarizeGenreSentiment(sessions, games, registry, opts)
	summary := BuildGenreInterestSentiment(preferences, sentiments, registry)

	if len(summary.Genres) != 1 {
		t.Fatalf("genres: got %d, want 1", len(summary.Genres))
	}
	entry := summary.Genres[0]
	if entry.Interest.AverageElo == nil || !almostEqual(*entry.Interest.AverageElo, 1600) {
		t.Errorf("average elo: got %v, want 1600", entry.Interest.AverageElo)
	}
	if entry.Interest.InterestScore == nil || !almostEqual(*entry.Interest.InterestScore, 80) {
		t.Errorf("interest score: got %v, want 80", entry.Interest.InterestScore)
	}
	if entry.Sentiment.WeightedSentiment == nil || !almostEqual(*entry.Sentiment.WeightedSentiment, 100) {
		t.Errorf("sentiment: got %v, want 100", entry.Sentiment.WeightedSentiment)
	}
	// 兴趣侧要为每个分组给出条目，即使该分组没有数据
	for _, bucket := range registry.Buckets() {
		if _, ok := entry.Interest.Buckets[bucket.ID]; !ok {
			t.Errorf("bucket %q missing from interest view", bucket.ID)
		}
	}
}
