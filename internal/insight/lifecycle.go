package insight

import (
	"sort"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// backlogStatus 是积压老化和积压价格分析针对的字面状态值
// 刻意不走bucket映射：自定义分组方案不应扩大"积压"的语义
const backlogStatus = "backlog"

// DurationSample 是一段生命周期间隔的样本
type DurationSample struct {
	GameID       uint    `json:"game_id"`
	Title        string  `json:"title"`
	Days         int     `json:"days"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	FinishDate   *string `json:"finish_date,omitempty"`
}

// Percentiles 是样本分布的关键分位数
type Percentiles struct {
	P10 *float64 `json:"p10"`
	P25 *float64 `json:"p25"`
	P75 *float64 `json:"p75"`
	P90 *float64 `json:"p90"`
}

// DurationStatistics 描述一组天数样本的分布
type DurationStatistics struct {
	Count       int         `json:"count"`
	Min         *float64    `json:"min"`
	Max         *float64    `json:"max"`
	Mean        *float64    `json:"mean"`
	Median      *float64    `json:"median"`
	Percentiles Percentiles `json:"percentiles"`
}

// DurationSummary 是单个间隔类别的完整视图
type DurationSummary struct {
	Statistics      DurationStatistics `json:"statistics"`
	LongestExamples []DurationSample   `json:"longest_examples"`
}

// AgingEntry 是积压老化列表中的一条记录
type AgingEntry struct {
	GameID       uint    `json:"game_id"`
	Title        string  `json:"title"`
	DaysWaiting  int     `json:"days_waiting"`
	PurchaseDate *string `json:"purchase_date"`
	AddedDate    string  `json:"added_date"`
}

// LifecycleSummary 是生命周期指标的完整输出
type LifecycleSummary struct {
	GeneratedAt      string          `json:"generated_at"`
	PurchaseToStart  DurationSummary `json:"purchase_to_start"`
	StartToFinish    DurationSummary `json:"start_to_finish"`
	PurchaseToFinish DurationSummary `json:"purchase_to_finish"`
	AgingBacklog     []AgingEntry    `json:"aging_backlog"`
}

// daysBetween 计算两个日期之间的整天数
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// percentile 在排好序的样本上做线性插值分位数
// index = (n-1)*p，在相邻的两个顺序统计量之间插值
func percentile(sortedValues []float64, p float64) *float64 {
	if len(sortedValues) == 0 {
		return nil
	}
	if p <= 0 {
		return floatPtr(sortedValues[0])
	}
	if p >= 1 {
		return floatPtr(sortedValues[len(sortedValues)-1])
	}

	index := float64(len(sortedValues)-1) * p
	lower := int(index)
	upper := lower
	if float64(lower) < index {
		upper = lower + 1
	}
	lowerValue := sortedValues[lower]
	upperValue := sortedValues[upper]
	if lower == upper {
		return floatPtr(lowerValue)
	}
	fraction := index - float64(lower)
	return floatPtr(lowerValue + (upperValue-lowerValue)*fraction)
}

// describeDurations 计算一组天数样本的统计描述
// 空样本返回count=0、其余全为nil的结构
func describeDurations(days []int) DurationStatistics {
	if len(days) == 0 {
		return DurationStatistics{Count: 0}
	}

	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = float64(d)
	}
	sort.Float64s(values)

	var sum float64
	for _, v := range values {
		sum += v
	}

	return DurationStatistics{
		Count:  len(values),
		Min:    floatPtr(values[0]),
		Max:    floatPtr(values[len(values)-1]),
		Mean:   floatPtr(sum / float64(len(values))),
		Median: percentile(values, 0.5),
		Percentiles: Percentiles{
			P10: percentile(values, 0.10),
			P25: percentile(values, 0.25),
			P75: percentile(values, 0.75),
			P90: percentile(values, 0.90),
		},
	}
}

// summarizeDurationSet 统计样本分布并挑出最长的5条样本
func summarizeDurationSet(samples []DurationSample) DurationSummary {
	days := make([]int, len(samples))
	for i, sample := range samples {
		days[i] = sample.Days
	}

	longest := make([]DurationSample, len(samples))
	copy(longest, samples)
	sort.SliceStable(longest, func(i, j int) bool {
		return longest[i].Days > longest[j].Days
	})
	if len(longest) > 5 {
		longest = longest[:5]
	}

	return DurationSummary{
		Statistics:      describeDurations(days),
		LongestExamples: longest,
	}
}

// SummarizeLifecycleMetrics 计算购买→开始→通关的间隔分布和积压老化列表
// today 是计算等待天数的参考日期；backlogLimit 限制老化列表的长度
func SummarizeLifecycleMetrics(games []game.Game, registry *status.Registry, today time.Time, backlogLimit int) LifecycleSummary {
	var purchaseToStart, startToFinish, purchaseToFinish []DurationSample
	var aging []AgingEntry

	for i := range games {
		g := &games[i]

		if g.PurchaseDate != nil && g.StartDate != nil {
			purchaseToStart = append(purchaseToStart, DurationSample{
				GameID:       g.ID,
				Title:        g.Title,
				Days:         daysBetween(*g.PurchaseDate, *g.StartDate),
				PurchaseDate: formatDatePtr(g.PurchaseDate),
				StartDate:    formatDatePtr(g.StartDate),
			})
		}
		if g.StartDate != nil && g.FinishDate != nil {
			startToFinish = append(startToFinish, DurationSample{
				GameID:     g.ID,
				Title:      g.Title,
				Days:       daysBetween(*g.StartDate, *g.FinishDate),
				StartDate:  formatDatePtr(g.StartDate),
				FinishDate: formatDatePtr(g.FinishDate),
			})
		}
		if g.PurchaseDate != nil && g.FinishDate != nil {
			purchaseToFinish = append(purchaseToFinish, DurationSample{
				GameID:       g.ID,
				Title:        g.Title,
				Days:         daysBetween(*g.PurchaseDate, *g.FinishDate),
				PurchaseDate: formatDatePtr(g.PurchaseDate),
				FinishDate:   formatDatePtr(g.FinishDate),
			})
		}

		// 积压老化：还没开始玩的积压游戏，从购买日（或入库日）等到今天
		if registry.Normalize(g.Status) == backlogStatus && g.StartDate == nil {
			anchor := g.PurchaseDate
			if anchor == nil {
				created := time.Date(g.CreatedAt.Year(), g.CreatedAt.Month(), g.CreatedAt.Day(), 0, 0, 0, 0, time.UTC)
				anchor = &created
			}

			waitDays := daysBetween(*anchor, today)
			if waitDays < 0 {
				waitDays = 0
			}
			aging = append(aging, AgingEntry{
				GameID:       g.ID,
				Title:        g.Title,
				DaysWaiting:  waitDays,
				PurchaseDate: formatDatePtr(g.PurchaseDate),
				AddedDate:    anchor.Format("2006-01-02"),
			})
		}
	}

	sort.SliceStable(aging, func(i, j int) bool {
		return aging[i].DaysWaiting > aging[j].DaysWaiting
	})
	if backlogLimit < 0 {
		backlogLimit = 0
	}
	if len(aging) > backlogLimit {
		aging = aging[:backlogLimit]
	}
	if aging == nil {
		aging = []AgingEntry{}
	}

	return LifecycleSummary{
		PurchaseToStart:  summarizeDurationSet(purchaseToStart),
		StartToFinish:    summarizeDurationSet(startToFinish),
		PurchaseToFinish: summarizeDurationSet(purchaseToFinish),
		AgingBacklog:     aging,
	}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
