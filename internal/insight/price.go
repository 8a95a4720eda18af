package insight

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// Money 是金额和币种的组合
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CurrencyTotals 是单一币种下的消费汇总
type CurrencyTotals struct {
	OwnedAmount           float64  `json:"owned_amount"`
	OwnedCount            int      `json:"owned_count"`
	BacklogAmount         float64  `json:"backlog_amount"`
	BacklogCount          int      `json:"backlog_count"`
	WishlistAmount        float64  `json:"wishlist_amount"`
	WishlistCount         int      `json:"wishlist_count"`
	AverageOwnedAmount    *float64 `json:"average_owned_amount"`
	AverageBacklogAmount  *float64 `json:"average_backlog_amount"`
	AverageWishlistAmount *float64 `json:"average_wishlist_amount"`
	TrackedHours          float64  `json:"tracked_hours"`
	TrackedTitles         int      `json:"tracked_titles"`
	AverageTrackedHours   *float64 `json:"average_tracked_hours"`
}

// PricedGame 是带价格信息的游戏条目
type PricedGame struct {
	GameID       uint    `json:"game_id"`
	Title        string  `json:"title"`
	Price        Money   `json:"price"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	DaysOwned    *int    `json:"days_owned,omitempty"`
	AddedDate    *string `json:"added_date,omitempty"`
	EloRating    float64 `json:"elo_rating"`
}

// BacklogPriceSection 聚焦积压中最贵的游戏
type BacklogPriceSection struct {
	MostExpensive []PricedGame `json:"most_expensive"`
	TotalPriced   int          `json:"total_priced"`
}

// WishlistPriceSection 聚焦愿望单中的高价与高兴趣条目
type WishlistPriceSection struct {
	MostExpensive   []PricedGame `json:"most_expensive"`
	HighestInterest []PricedGame `json:"highest_interest"`
	TotalPriced     int          `json:"total_priced"`
}

// ValueEntry 是一款游戏的性价比画像
type ValueEntry struct {
	GameID            uint     `json:"game_id"`
	Title             string   `json:"title"`
	Price             Money    `json:"price"`
	TotalHours        float64  `json:"total_hours"`
	HoursPerCurrency  *float64 `json:"hours_per_currency"`
	CostPerHour       *float64 `json:"cost_per_hour"`
	EnjoymentPerCost  *float64 `json:"enjoyment_per_cost"`
	WeightedSentiment *float64 `json:"weighted_sentiment"`
}

// ValueSection 是单一币种下的性价比榜单
type ValueSection struct {
	Best          []ValueEntry `json:"best"`
	Underutilized []ValueEntry `json:"underutilized"`
}

// SavingsDeal 是一笔折扣购入记录
type SavingsDeal struct {
	GameID          uint    `json:"game_id"`
	Title           string  `json:"title"`
	Price           Money   `json:"price"`
	PurchasePrice   Money   `json:"purchase_price"`
	SavedAmount     float64 `json:"saved_amount"`
	DiscountPercent float64 `json:"discount_percent"`
}

// SavingsSection 是单一币种下的省钱汇总
type SavingsSection struct {
	TotalSaved             float64       `json:"total_saved"`
	DiscountedCount        int           `json:"discounted_count"`
	AverageDiscountPercent *float64      `json:"average_discount_percent"`
	TopDeals               []SavingsDeal `json:"top_deals"`
}

// PriceSummary 是价格与价值分析的完整输出
type PriceSummary struct {
	GeneratedAt     string                    `json:"generated_at"`
	PrimaryCurrency *string                   `json:"primary_currency"`
	CurrencyTotals  map[string]CurrencyTotals `json:"currency_totals"`
	Backlog         BacklogPriceSection       `json:"backlog"`
	Wishlist        WishlistPriceSection      `json:"wishlist"`
	ValueForMoney   map[string]ValueSection   `json:"value_for_money"`
	Savings         map[string]SavingsSection `json:"savings"`
}

// effectivePrice 解析一款游戏的有效价格和币种
// 优先用实际购入价，回退到标价；币种层层回退到默认值
func effectivePrice(g *game.Game, defaultCurrency string) (float64, string, bool) {
	var amount *float64
	if g.PurchasePriceAmount != nil && *g.PurchasePriceAmount >= 0 {
		amount = g.PurchasePriceAmount
	} else if g.PriceAmount != nil && *g.PriceAmount >= 0 {
		amount = g.PriceAmount
	}
	if amount == nil {
		return 0, "", false
	}

	currency := defaultCurrency
	if g.PurchasePriceCurrency != nil && strings.TrimSpace(*g.PurchasePriceCurrency) != "" {
		currency = strings.ToUpper(strings.TrimSpace(*g.PurchasePriceCurrency))
	} else if g.PriceCurrency != nil && strings.TrimSpace(*g.PriceCurrency) != "" {
		currency = strings.ToUpper(strings.TrimSpace(*g.PriceCurrency))
	}
	return *amount, currency, true
}

type valueCandidate struct {
	entry    ValueEntry
	owned    bool
	currency string

	// hours 保留未四舍五入的游玩时长，门槛判断不能用展示值
	hours float64
}

// SummarizePriceInsights 计算消费总额、积压/愿望单价格榜、性价比和折扣省钱
func SummarizePriceInsights(games []game.Game, sessions []session.SessionLog, registry *status.Registry, today time.Time, limit int, opts Options) PriceSummary {
	if limit <= 0 {
		limit = 5
	}

	totals := make(map[string]*CurrencyTotals)
	ensureTotals := func(currency string) *CurrencyTotals {
		if t, ok := totals[currency]; ok {
			return t
		}
		t := &CurrencyTotals{}
		totals[currency] = t
		return t
	}

	// 按 game_id 汇总会话分钟和体验样本，用于性价比计算
	minutesByGame := make(map[uint]float64)
	samplesByGame := make(map[uint][]SentimentSample)
	for i := range sessions {
		s := &sessions[i]
		if s.GameID == nil || s.PlaytimeMinutes <= 0 {
			continue
		}
		minutesByGame[*s.GameID] += float64(s.PlaytimeMinutes)
		samplesByGame[*s.GameID] = append(samplesByGame[*s.GameID], s)
	}

	var backlogCandidates, wishlistCandidates []PricedGame
	var valueCandidates []valueCandidate
	savings := make(map[string]*SavingsSection)
	discountSum := make(map[string]float64)

	for i := range games {
		g := &games[i]
		amount, currency, ok := effectivePrice(g, opts.DefaultCurrency)
		if !ok {
			continue
		}

		owned := registry.RequiresPurchaseDate(g.Status)
		isBacklog := registry.Normalize(g.Status) == backlogStatus

		t := ensureTotals(currency)
		if owned {
			t.OwnedAmount += amount
			t.OwnedCount++
		} else {
			t.WishlistAmount += amount
			t.WishlistCount++
		}
		if isBacklog {
			t.BacklogAmount += amount
			t.BacklogCount++
		}

		priced := PricedGame{
			GameID:    g.ID,
			Title:     g.Title,
			Price:     Money{Amount: round2(amount), Currency: currency},
			EloRating: g.EloRating,
		}
		if isBacklog {
			priced.PurchaseDate = formatDatePtr(g.PurchaseDate)
			if g.PurchaseDate != nil {
				days := daysBetween(*g.PurchaseDate, today)
				if days < 0 {
					days = 0
				}
				priced.DaysOwned = &days
			}
			backlogCandidates = append(backlogCandidates, priced)
		}
		if !owned {
			added := g.CreatedAt.Format("2006-01-02")
			priced.AddedDate = &added
			wishlistCandidates = append(wishlistCandidates, priced)
		}

		// 折扣检测：标价和购入价币种一致且标价更高才算省到钱
		if g.PriceAmount != nil && g.PurchasePriceAmount != nil {
			listAmount := *g.PriceAmount
			paidAmount := *g.PurchasePriceAmount
			_, paidCurrency, _ := effectivePrice(g, opts.DefaultCurrency)
			listCurrency := opts.DefaultCurrency
			if g.PriceCurrency != nil && strings.TrimSpace(*g.PriceCurrency) != "" {
				listCurrency = strings.ToUpper(strings.TrimSpace(*g.PriceCurrency))
			}
			if listCurrency == paidCurrency && listAmount > paidAmount && listAmount > 0 {
				saved := listAmount - paidAmount
				percent := saved / listAmount * 100
				section, exists := savings[paidCurrency]
				if !exists {
					section = &SavingsSection{}
					savings[paidCurrency] = section
				}
				section.TotalSaved += saved
				section.DiscountedCount++
				discountSum[paidCurrency] += percent
				section.TopDeals = append(section.TopDeals, SavingsDeal{
					GameID:          g.ID,
					Title:           g.Title,
					Price:           Money{Amount: round2(listAmount), Currency: listCurrency},
					PurchasePrice:   Money{Amount: round2(paidAmount), Currency: paidCurrency},
					SavedAmount:     round2(saved),
					DiscountPercent: round1(percent),
				})
			}
		}

		// 性价比：把游玩时长折算到每货币单位的小时数
		minutes := minutesByGame[g.ID]
		hours := minutes / 60
		if owned && hours > 0 {
			t.TrackedHours += hours
			t.TrackedTitles++
		}

		entry := ValueEntry{
			GameID:     g.ID,
			Title:      g.Title,
			Price:      Money{Amount: round2(amount), Currency: currency},
			TotalHours: round2(hours),
		}
		if amount > 0 && hours > 0 {
			entry.HoursPerCurrency = floatPtr(hours / amount)
		}
		if hours > 0 {
			entry.CostPerHour = floatPtr(round2(amount / hours))
		}
		result := ComputeWeightedSentiment(samplesByGame[g.ID], opts.SentimentWeights)
		if result.WeightedScore != nil {
			entry.WeightedSentiment = floatPtr(round1(*result.WeightedScore))
		}
		if entry.HoursPerCurrency != nil {
			perCost := *entry.HoursPerCurrency
			if result.WeightedScore != nil {
				factor := *result.WeightedScore / 100
				factor = math.Max(0, math.Min(1, factor))
				perCost = factor * *entry.HoursPerCurrency
			}
			entry.EnjoymentPerCost = floatPtr(perCost)
		}
		valueCandidates = append(valueCandidates, valueCandidate{entry: entry, owned: owned, currency: currency, hours: hours})
	}

	// --- 榜单排序与截断 ---

	sort.SliceStable(backlogCandidates, func(i, j int) bool {
		return backlogCandidates[i].Price.Amount > backlogCandidates[j].Price.Amount
	})
	backlogSection := BacklogPriceSection{
		MostExpensive: limitPriced(backlogCandidates, limit),
		TotalPriced:   len(backlogCandidates),
	}

	wishlistByPrice := make([]PricedGame, len(wishlistCandidates))
	copy(wishlistByPrice, wishlistCandidates)
	sort.SliceStable(wishlistByPrice, func(i, j int) bool {
		return wishlistByPrice[i].Price.Amount > wishlistByPrice[j].Price.Amount
	})
	wishlistByElo := make([]PricedGame, len(wishlistCandidates))
	copy(wishlistByElo, wishlistCandidates)
	sort.SliceStable(wishlistByElo, func(i, j int) bool {
		return wishlistByElo[i].EloRating > wishlistByElo[j].EloRating
	})
	wishlistSection := WishlistPriceSection{
		MostExpensive:   limitPriced(wishlistByPrice, limit),
		HighestInterest: limitPriced(wishlistByElo, limit),
		TotalPriced:     len(wishlistCandidates),
	}

	valueSections := buildValueSections(valueCandidates, limit)

	savingsOut := make(map[string]SavingsSection)
	for currency, section := range savings {
		sort.SliceStable(section.TopDeals, func(i, j int) bool {
			if section.TopDeals[i].SavedAmount != section.TopDeals[j].SavedAmount {
				return section.TopDeals[i].SavedAmount > section.TopDeals[j].SavedAmount
			}
			return section.TopDeals[i].DiscountPercent > section.TopDeals[j].DiscountPercent
		})
		if len(section.TopDeals) > limit {
			section.TopDeals = section.TopDeals[:limit]
		}
		out := SavingsSection{
			TotalSaved:      round2(section.TotalSaved),
			DiscountedCount: section.DiscountedCount,
			TopDeals:        section.TopDeals,
		}
		if section.DiscountedCount > 0 {
			out.AverageDiscountPercent = floatPtr(round1(discountSum[currency] / float64(section.DiscountedCount)))
		}
		savingsOut[currency] = out
	}

	totalsOut := make(map[string]CurrencyTotals)
	for currency, t := range totals {
		out := *t
		out.OwnedAmount = round2(out.OwnedAmount)
		out.BacklogAmount = round2(out.BacklogAmount)
		out.WishlistAmount = round2(out.WishlistAmount)
		out.TrackedHours = round2(out.TrackedHours)
		if out.OwnedCount > 0 {
			out.AverageOwnedAmount = floatPtr(round2(t.OwnedAmount / float64(out.OwnedCount)))
		}
		if out.BacklogCount > 0 {
			out.AverageBacklogAmount = floatPtr(round2(t.BacklogAmount / float64(out.BacklogCount)))
		}
		if out.WishlistCount > 0 {
			out.AverageWishlistAmount = floatPtr(round2(t.WishlistAmount / float64(out.WishlistCount)))
		}
		if out.TrackedTitles > 0 {
			out.AverageTrackedHours = floatPtr(round2(t.TrackedHours / float64(out.TrackedTitles)))
		}
		totalsOut[currency] = out
	}

	return PriceSummary{
		PrimaryCurrency: determinePrimaryCurrency(totals),
		CurrencyTotals:  totalsOut,
		Backlog:         backlogSection,
		Wishlist:        wishlistSection,
		ValueForMoney:   valueSections,
		Savings:         savingsOut,
	}
}

func limitPriced(entries []PricedGame, limit int) []PricedGame {
	if entries == nil {
		return []PricedGame{}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// buildValueSections 按币种分别生成"最划算"和"吃灰"两个榜单
func buildValueSections(candidates []valueCandidate, limit int) map[string]ValueSection {
	byCurrency := make(map[string][]valueCandidate)
	for _, c := range candidates {
		byCurrency[c.currency] = append(byCurrency[c.currency], c)
	}

	sections := make(map[string]ValueSection)
	for currency, group := range byCurrency {
		var best, underutilized []ValueEntry
		for _, c := range group {
			// 最划算：至少有1小时游玩记录
			if c.hours >= 1 && c.entry.HoursPerCurrency != nil {
				best = append(best, c.entry)
			}
			// 吃灰榜：已拥有但每小时成本高（或根本没玩）的游戏
			if c.owned {
				underutilized = append(underutilized, c.entry)
			}
		}

		sort.SliceStable(best, func(i, j int) bool {
			ei, ej := best[i], best[j]
			vi, vj := 0.0, 0.0
			if ei.EnjoymentPerCost != nil {
				vi = *ei.EnjoymentPerCost
			}
			if ej.EnjoymentPerCost != nil {
				vj = *ej.EnjoymentPerCost
			}
			if vi != vj {
				return vi > vj
			}
			return *ei.HoursPerCurrency > *ej.HoursPerCurrency
		})
		sort.SliceStable(underutilized, func(i, j int) bool {
			ei, ej := underutilized[i], underutilized[j]
			// 没有每小时成本的排在最后
			if (ei.CostPerHour == nil) != (ej.CostPerHour == nil) {
				return ei.CostPerHour != nil
			}
			if ei.CostPerHour != nil && ej.CostPerHour != nil && *ei.CostPerHour != *ej.CostPerHour {
				return *ei.CostPerHour > *ej.CostPerHour
			}
			return ei.TotalHours < ej.TotalHours
		})

		if len(best) > limit {
			best = best[:limit]
		}
		if len(underutilized) > limit {
			underutilized = underutilized[:limit]
		}
		sections[currency] = ValueSection{Best: best, Underutilized: underutilized}
	}
	return sections
}

// determinePrimaryCurrency 选出主币种：按(已拥有, 积压, 愿望单)金额元组取最大
func determinePrimaryCurrency(totals map[string]*CurrencyTotals) *string {
	var primary *string
	var bestOwned, bestBacklog, bestWishlist float64
	currencies := make([]string, 0, len(totals))
	for currency := range totals {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		t := totals[currency]
		better := t.OwnedAmount > bestOwned ||
			(t.OwnedAmount == bestOwned && t.BacklogAmount > bestBacklog) ||
			(t.OwnedAmount == bestOwned && t.BacklogAmount == bestBacklog && t.WishlistAmount > bestWishlist)
		if primary == nil || better {
			c := currency
			primary = &c
			bestOwned, bestBacklog, bestWishlist = t.OwnedAmount, t.BacklogAmount, t.WishlistAmount
		}
	}
	return primary
}
