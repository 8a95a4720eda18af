package ranking

import (
	"errors"
	"testing"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRankingDB 把全局数据库替换成一个干净的内存SQLite实例
func setupRankingDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// 内存库只允许单连接，否则连接池里的新连接各自看到一个空库
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&game.Game{}, &Comparison{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
}

func seedGame(t *testing.T, title string, statusValue string, elo float64) uint {
	t.Helper()
	g := game.Game{Title: title, Status: statusValue, EloRating: elo}
	if err := database.DB.Create(&g).Error; err != nil {
		t.Fatalf("写入测试游戏失败: %v", err)
	}
	return g.ID
}

func gameElo(t *testing.T, id uint) float64 {
	t.Helper()
	var g game.Game
	if err := database.DB.First(&g, id).Error; err != nil {
		t.Fatalf("读取游戏 %d 失败: %v", id, err)
	}
	return g.EloRating
}

func TestSubmitComparisonUpdatesBothRatings(t *testing.T) {
	setupRankingDB(t)
	a := seedGame(t, "Alpha", "backlog", 1500)
	b := seedGame(t, "Beta", "backlog", 1500)

	if err := SubmitComparison("backlog", a, b, a); err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}

	if got := gameElo(t, a); got != 1516 {
		t.Errorf("winner rating: got %v, want 1516", got)
	}
	if got := gameElo(t, b); got != 1484 {
		t.Errorf("loser rating: got %v, want 1484", got)
	}

	var count int64
	if err := database.DB.Model(&Comparison{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("comparison rows: got %d, want 1", count)
	}
}

func TestSubmitComparisonFinalizedPairIsImmutable(t *testing.T) {
	setupRankingDB(t)
	a := seedGame(t, "Alpha", "backlog", 1500)
	b := seedGame(t, "Beta", "backlog", 1500)

	if err := SubmitComparison("backlog", a, b, a); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	eloA, eloB := gameElo(t, a), gameElo(t, b)

	// 原样重提
	if err := SubmitComparison("backlog", a, b, a); !errors.Is(err, ErrPairFinalized) {
		t.Errorf("resubmission: got %v, want ErrPairFinalized", err)
	}
	// 调换顺序并换一个胜者重提，规范化后仍是同一对
	if err := SubmitComparison("backlog", b, a, b); !errors.Is(err, ErrPairFinalized) {
		t.Errorf("reversed resubmission: got %v, want ErrPairFinalized", err)
	}

	if got := gameElo(t, a); got != eloA {
		t.Errorf("rating A changed after rejected resubmission: %v -> %v", eloA, got)
	}
	if got := gameElo(t, b); got != eloB {
		t.Errorf("rating B changed after rejected resubmission: %v -> %v", eloB, got)
	}

	var stored Comparison
	if err := database.DB.First(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.WinnerID == nil || *stored.WinnerID != a {
		t.Errorf("stored winner: got %v, want %d", stored.WinnerID, a)
	}
}

func TestSubmitComparisonRejectsInvalidInput(t *testing.T) {
	setupRankingDB(t)
	a := seedGame(t, "Alpha", "backlog", 1500)
	b := seedGame(t, "Beta", "backlog", 1500)

	if err := SubmitComparison("backlog", a, b, 999); !errors.Is(err, ErrWinnerNotInPair) {
		t.Errorf("outside winner: got %v, want ErrWinnerNotInPair", err)
	}
	if err := SubmitComparison("backlog", a, a, a); !errors.Is(err, ErrWinnerNotInPair) {
		t.Errorf("self pair: got %v, want ErrWinnerNotInPair", err)
	}
	if err := SubmitComparison("backlog", 888, 999, 888); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown games: got %v, want ErrGameNotFound", err)
	}

	if got := gameElo(t, a); got != 1500 {
		t.Errorf("rating A moved on rejected input: %v", got)
	}
	if got := gameElo(t, b); got != 1500 {
		t.Errorf("rating B moved on rejected input: %v", got)
	}
}

func TestPickPairReportsExhaustion(t *testing.T) {
	setupRankingDB(t)
	a := seedGame(t, "Alpha", "backlog", 1500)
	b := seedGame(t, "Beta", "backlog", 1500)

	offer, done, err := PickPair("backlog")
	if err != nil {
		t.Fatalf("PickPair: %v", err)
	}
	if done || offer == nil {
		t.Fatalf("expected a fresh pair, got done=%v offer=%v", done, offer)
	}
	if offer.PairID == "" {
		t.Error("pair offer should carry an id")
	}

	if err := SubmitComparison("backlog", a, b, b); err != nil {
		t.Fatalf("SubmitComparison: %v", err)
	}

	offer, done, err = PickPair("backlog")
	if err != nil {
		t.Fatalf("PickPair after exhaustion: %v", err)
	}
	if !done || offer != nil {
		t.Errorf("expected exhaustion, got done=%v offer=%v", done, offer)
	}
}

func TestPickPairNeedsTwoGames(t *testing.T) {
	setupRankingDB(t)
	seedGame(t, "Solo", "backlog", 1500)

	if _, _, err := PickPair("backlog"); !errors.Is(err, ErrNotEnoughGames) {
		t.Errorf("got %v, want ErrNotEnoughGames", err)
	}
}
