package insight

import (
	"math"
	"testing"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

func money(v float64) *float64 { return &v }

func priceScenario() ([]game.Game, []session.SessionLog) {
	games := []game.Game{
		{
			ID: 1, Title: "Chronicle Backlog", Status: "backlog", EloRating: 1625,
			PriceAmount: money(150), PriceCurrency: strPtr("MYR"),
			PurchasePriceAmount: money(120), PurchasePriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 5, 1),
		},
		{
			ID: 2, Title: "Triumph Saga", Status: "full_clear", EloRating: 1780,
			PriceAmount: money(90), PriceCurrency: strPtr("MYR"),
			PurchasePriceAmount: money(60), PurchasePriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 4, 12), StartDate: dayPtr(2023, 4, 15), FinishDate: dayPtr(2023, 5, 10),
		},
		{
			ID: 3, Title: "Slow Burn", Status: "playing", EloRating: 1505,
			PriceAmount: money(180), PriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 4, 20),
		},
		{
			ID: 4, Title: "Stellar Wish", Status: "wishlist", EloRating: 1820,
			PriceAmount: money(95), PriceCurrency: strPtr("MYR"),
		},
		{
			ID: 5, Title: "Budget Indie", Status: "wishlist", EloRating: 1510,
			PriceAmount: money(45), PriceCurrency: strPtr("USD"),
		},
	}
	sessions := []session.SessionLog{
		newSession(uintPtr(2), "Triumph Saga", day(2023, 5, 20), 600, "good"),
		newSession(uintPtr(3), "Slow Burn", day(2023, 5, 22), 45, "mediocre"),
	}
	return games, sessions
}

func TestPriceInsightsCurrencyTotals(t *testing.T) {
	games, sessions := priceScenario()

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	if summary.PrimaryCurrency == nil || *summary.PrimaryCurrency != "MYR" {
		t.Fatalf("primary currency: got %v, want MYR", summary.PrimaryCurrency)
	}

	myr, ok := summary.CurrencyTotals["MYR"]
	if !ok {
		t.Fatal("MYR totals missing")
	}
	if !almostEqual(myr.OwnedAmount, 360) {
		t.Errorf("owned amount: got %v, want 360", myr.OwnedAmount)
	}
	if !almostEqual(myr.BacklogAmount, 120) {
		t.Errorf("backlog amount: got %v, want 120", myr.BacklogAmount)
	}
	if !almostEqual(myr.WishlistAmount, 95) {
		t.Errorf("wishlist amount: got %v, want 95", myr.WishlistAmount)
	}
	if myr.AverageTrackedHours == nil || !almostEqual(*myr.AverageTrackedHours, 5.38) {
		t.Errorf("average tracked hours: got %v, want 5.38", myr.AverageTrackedHours)
	}

	usd := summary.CurrencyTotals["USD"]
	if !almostEqual(usd.WishlistAmount, 45) || usd.WishlistCount != 1 {
		t.Errorf("USD wishlist: got %v / %d, want 45 / 1", usd.WishlistAmount, usd.WishlistCount)
	}
}

func TestPriceInsightsBacklogSection(t *testing.T) {
	games, sessions := priceScenario()

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	if summary.Backlog.TotalPriced != 1 {
		t.Fatalf("backlog total priced: got %d, want 1", summary.Backlog.TotalPriced)
	}
	entry := summary.Backlog.MostExpensive[0]
	if entry.Title != "Chronicle Backlog" {
		t.Errorf("most expensive: got %q", entry.Title)
	}
	// 有效价格取实际购入价而不是标价
	if !almostEqual(entry.Price.Amount, 120) {
		t.Errorf("price amount: got %v, want 120", entry.Price.Amount)
	}
	if entry.DaysOwned == nil || *entry.DaysOwned != 31 {
		t.Errorf("days owned: got %v, want 31", entry.DaysOwned)
	}
}

func TestPriceInsightsWishlistSection(t *testing.T) {
	games, sessions := priceScenario()

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	if summary.Wishlist.TotalPriced != 2 {
		t.Fatalf("wishlist total priced: got %d, want 2", summary.Wishlist.TotalPriced)
	}
	if summary.Wishlist.HighestInterest[0].Title != "Stellar Wish" {
		t.Errorf("highest interest: got %q", summary.Wishlist.HighestInterest[0].Title)
	}
	if summary.Wishlist.MostExpensive[0].Title != "Stellar Wish" {
		t.Errorf("most expensive: got %q", summary.Wishlist.MostExpensive[0].Title)
	}
}

func TestPriceInsightsValueForMoney(t *testing.T) {
	games, sessions := priceScenario()

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	myr, ok := summary.ValueForMoney["MYR"]
	if !ok {
		t.Fatal("MYR value section missing")
	}

	if len(myr.Best) == 0 || myr.Best[0].Title != "Triumph Saga" {
		t.Fatalf("best value: got %+v", myr.Best)
	}
	// 享受性价比不做四舍五入：clamp(100/100) * (10h / 60)
	wantEnjoyment := (600.0 / 60.0) / 60.0
	got := myr.Best[0].EnjoymentPerCost
	if got == nil || math.Abs(*got-wantEnjoyment)/wantEnjoyment > 1e-6 {
		t.Errorf("enjoyment per cost: got %v, want %v", got, wantEnjoyment)
	}

	if len(myr.Underutilized) == 0 || myr.Underutilized[0].Title != "Slow Burn" {
		t.Fatalf("underutilized: got %+v", myr.Underutilized)
	}
	cost := myr.Underutilized[0].CostPerHour
	if cost == nil || !almostEqual(*cost, 240.0) {
		t.Errorf("cost per hour: got %v, want 240", cost)
	}
	// 没有游玩记录的游戏排在吃灰榜末尾
	last := myr.Underutilized[len(myr.Underutilized)-1]
	if last.CostPerHour != nil {
		t.Errorf("games without playtime should sort last, got %+v", last)
	}
}

func TestPriceInsightsSavings(t *testing.T) {
	games, sessions := priceScenario()

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	savings, ok := summary.Savings["MYR"]
	if !ok {
		t.Fatal("MYR savings missing")
	}
	if !almostEqual(savings.TotalSaved, 60) {
		t.Errorf("total saved: got %v, want 60", savings.TotalSaved)
	}
	if savings.DiscountedCount != 2 {
		t.Errorf("discounted count: got %d, want 2", savings.DiscountedCount)
	}
	if savings.AverageDiscountPercent == nil || !almostEqual(*savings.AverageDiscountPercent, 26.7) {
		t.Errorf("average discount: got %v, want 26.7", savings.AverageDiscountPercent)
	}

	// 省得一样多时，折扣比例高的排前面
	top := savings.TopDeals[0]
	if top.Title != "Triumph Saga" {
		t.Errorf("top deal: got %q, want Triumph Saga", top.Title)
	}
	if !almostEqual(top.SavedAmount, 30) {
		t.Errorf("saved amount: got %v, want 30", top.SavedAmount)
	}
	if !almostEqual(top.DiscountPercent, 33.3) {
		t.Errorf("discount percent: got %v, want 33.3", top.DiscountPercent)
	}
	if !almostEqual(top.PurchasePrice.Amount, 60) {
		t.Errorf("purchase price: got %v, want 60", top.PurchasePrice.Amount)
	}
}

func TestPriceInsightsSkipsUnpricedGames(t *testing.T) {
	games := []game.Game{
		{ID: 1, Title: "Free", Status: "playing", PurchaseDate: dayPtr(2023, 1, 1)},
	}

	summary := SummarizePriceInsights(games, nil, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	if len(summary.CurrencyTotals) != 0 {
		t.Errorf("unpriced game should not create totals, got %+v", summary.CurrencyTotals)
	}
	if summary.PrimaryCurrency != nil {
		t.Errorf("primary currency should be nil, got %q", *summary.PrimaryCurrency)
	}
}

func TestPriceInsightsDefaultCurrencyFallback(t *testing.T) {
	games := []game.Game{
		{ID: 1, Title: "Bare", Status: "playing", EloRating: 1500,
			PriceAmount: money(50), PurchaseDate: dayPtr(2023, 1, 1)},
	}

	summary := SummarizePriceInsights(games, nil, newTestRegistry(t), day(2023, 6, 1), 3, DefaultOptions())

	if _, ok := summary.CurrencyTotals["MYR"]; !ok {
		t.Errorf("missing currency should fall back to MYR, got %+v", summary.CurrencyTotals)
	}
}

func TestPriceBacklogSectionScopedToLiteralStatus(t *testing.T) {
	// 粗粒度分组方案：playing也映射到backlog分组
	defs := []status.Definition{
		{Value: "backlog", Label: "Backlog", RequiresPurchaseDate: true},
		{Value: "playing", Label: "Playing", InsightBucket: "backlog", RequiresPurchaseDate: true},
	}
	registry, err := status.NewRegistry(defs, nil, "backlog")
	if err != nil {
		t.Fatal(err)
	}

	games := []game.Game{
		{
			ID: 1, Title: "Queued", Status: "backlog",
			PriceAmount: money(100), PriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 5, 1),
		},
		{
			ID: 2, Title: "Active", Status: "playing",
			PriceAmount: money(80), PriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 5, 1),
		},
	}

	summary := SummarizePriceInsights(games, nil, registry, day(2023, 6, 1), 5, DefaultOptions())

	if summary.Backlog.TotalPriced != 1 {
		t.Fatalf("backlog total priced: got %d, want 1", summary.Backlog.TotalPriced)
	}
	if summary.Backlog.MostExpensive[0].Title != "Queued" {
		t.Errorf("backlog entry: got %s, want Queued", summary.Backlog.MostExpensive[0].Title)
	}
	totals := summary.CurrencyTotals["MYR"]
	if totals.BacklogCount != 1 || !almostEqual(totals.BacklogAmount, 100) {
		t.Errorf("backlog totals: got count %d amount %v, want 1 / 100", totals.BacklogCount, totals.BacklogAmount)
	}
}

func TestBestValueRequiresFullTrackedHour(t *testing.T) {
	games := []game.Game{
		{
			ID: 1, Title: "Almost There", Status: "playing",
			PriceAmount: money(50), PriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 5, 1),
		},
		{
			ID: 2, Title: "Just Enough", Status: "playing",
			PriceAmount: money(50), PriceCurrency: strPtr("MYR"),
			PurchaseDate: dayPtr(2023, 5, 1),
		},
	}
	sessions := []session.SessionLog{
		// 59分钟差一点，60分钟刚好过线
		newSession(uintPtr(1), "Almost There", day(2023, 5, 20), 59, "good"),
		newSession(uintPtr(2), "Just Enough", day(2023, 5, 21), 60, "good"),
	}

	summary := SummarizePriceInsights(games, sessions, newTestRegistry(t), day(2023, 6, 1), 5, DefaultOptions())

	section, ok := summary.ValueForMoney["MYR"]
	if !ok {
		t.Fatal("MYR value section missing")
	}
	if len(section.Best) != 1 {
		t.Fatalf("best entries: got %d, want 1", len(section.Best))
	}
	if section.Best[0].Title != "Just Enough" {
		t.Errorf("best entry: got %s, want Just Enough", section.Best[0].Title)
	}
}
