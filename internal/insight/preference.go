package insight

import (
	"sort"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// DominantBalanced 表示没有任何分组在该类型上占据主导
const DominantBalanced = "balanced"

// GenreBucketMetrics 是一个类型在单个分组内的聚合指标
type GenreBucketMetrics struct {
	Count      int      `json:"count"`
	Weight     float64  `json:"weight"`
	Share      float64  `json:"share"`
	AverageElo *float64 `json:"average_elo"`
}

// BucketGenreEntry 是分组视图中的一条类型记录
type BucketGenreEntry struct {
	Genre      string   `json:"genre"`
	Count      int      `json:"count"`
	Weight     float64  `json:"weight"`
	Share      float64  `json:"share"`
	AverageElo *float64 `json:"average_elo"`
}

// BucketSummary 是单个分组的完整视图
type BucketSummary struct {
	TotalGames  int                `json:"total_games"`
	TotalWeight float64            `json:"total_weight"`
	TotalCount  int                `json:"total_count"`
	Genres      []BucketGenreEntry `json:"genres"`
}

// CombinedGenreEntry 是跨分组合并视图中的一条类型记录
type CombinedGenreEntry struct {
	Genre   string                        `json:"genre"`
	Buckets map[string]GenreBucketMetrics `json:"buckets"`
	Total   GenreBucketMetrics            `json:"total"`

	// Dominant 是权重严格占优的分组ID；权重相近或全部为零时为 "balanced"
	Dominant      string   `json:"dominant"`
	DominantShare *float64 `json:"dominant_share"`
}

// PreferenceSummary 是类型偏好聚合的完整输出
type PreferenceSummary struct {
	GeneratedAt    string                       `json:"generated_at"`
	Buckets        map[string]BucketSummary     `json:"buckets"`
	Genres         []CombinedGenreEntry         `json:"genres"`
	BucketMetadata map[string]status.BucketInfo `json:"bucket_metadata"`
}

// genreAccum 是聚合过程中单个(分组,类型)的累加器
type genreAccum struct {
	count  int
	weight float64
	eloSum float64
}

// SummarizeGenrePreferences 按洞察分组聚合类型偏好
// 每个游戏的权重在其全部类型间均分，多类型游戏不会放大总量；
// 无类型的游戏计入分组的游戏总数但不参与类型聚合
func SummarizeGenrePreferences(games []game.Game, registry *status.Registry, opts Options) PreferenceSummary {
	buckets := registry.Buckets()

	bucketGenreTotals := make(map[string]map[string]*genreAccum, len(buckets))
	bucketGameCounts := make(map[string]int, len(buckets))
	for _, bucket := range buckets {
		bucketGenreTotals[bucket.ID] = make(map[string]*genreAccum)
	}

	for i := range games {
		g := &games[i]
		bucketID := registry.BucketFor(g.Status)
		totals, ok := bucketGenreTotals[bucketID]
		if !ok {
			continue
		}

		bucketGameCounts[bucketID]++
		genres := NormalizeGenres(g.Genres())
		if len(genres) == 0 {
			continue
		}

		weightPerGenre := 1.0 / float64(len(genres))
		for _, genre := range genres {
			entry := totals[genre]
			if entry == nil {
				entry = &genreAccum{}
				totals[genre] = entry
			}
			entry.count++
			entry.weight += weightPerGenre
			entry.eloSum += weightPerGenre * g.EloRating
		}
	}

	// 1. 分组视图
	bucketSummaries := make(map[string]BucketSummary, len(buckets))
	allGenres := make(map[string]bool)
	for _, bucket := range buckets {
		totals := bucketGenreTotals[bucket.ID]

		var totalWeight float64
		var totalCount int
		for genre, accum := range totals {
			totalWeight += accum.weight
			totalCount += accum.count
			allGenres[genre] = true
		}

		entries := make([]BucketGenreEntry, 0, len(totals))
		for genre, accum := range totals {
			entry := BucketGenreEntry{
				Genre:  genre,
				Count:  accum.count,
				Weight: accum.weight,
			}
			if totalWeight > 0 {
				entry.Share = accum.weight / totalWeight
			}
			if accum.weight > 0 {
				entry.AverageElo = floatPtr(accum.eloSum / accum.weight)
			}
			entries = append(entries, entry)
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Weight != entries[j].Weight {
				return entries[i].Weight > entries[j].Weight
			}
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Genre < entries[j].Genre
		})

		bucketSummaries[bucket.ID] = BucketSummary{
			TotalGames:  bucketGameCounts[bucket.ID],
			TotalWeight: totalWeight,
			TotalCount:  totalCount,
			Genres:      entries,
		}
	}

	// 2. 跨分组合并视图
	var combinedWeight float64
	for _, summary := range bucketSummaries {
		combinedWeight += summary.TotalWeight
	}

	combined := make([]CombinedGenreEntry, 0, len(allGenres))
	for genre := range allGenres {
		entry := CombinedGenreEntry{
			Genre:   genre,
			Buckets: make(map[string]GenreBucketMetrics, len(buckets)),
		}

		var totalCount int
		var totalWeight, totalEloSum float64
		for _, bucket := range buckets {
			metrics := GenreBucketMetrics{}
			if accum := bucketGenreTotals[bucket.ID][genre]; accum != nil {
				metrics.Count = accum.count
				metrics.Weight = accum.weight
				if bucketWeight := bucketSummaries[bucket.ID].TotalWeight; bucketWeight > 0 {
					metrics.Share = accum.weight / bucketWeight
				}
				if accum.weight > 0 {
					metrics.AverageElo = floatPtr(accum.eloSum / accum.weight)
				}
				totalCount += accum.count
				totalWeight += accum.weight
				totalEloSum += accum.eloSum
			}
			entry.Buckets[bucket.ID] = metrics
		}

		entry.Total = GenreBucketMetrics{
			Count:  totalCount,
			Weight: totalWeight,
		}
		if combinedWeight > 0 {
			entry.Total.Share = totalWeight / combinedWeight
		}
		if totalWeight > 0 {
			entry.Total.AverageElo = floatPtr(totalEloSum / totalWeight)
		}

		entry.Dominant, entry.DominantShare = determineDominantBucket(entry.Buckets, totalWeight, opts.DominantTolerance)
		combined = append(combined, entry)
	}

	sort.Slice(combined, func(i, j int) bool {
		if combined[i].Total.Weight != combined[j].Total.Weight {
			return combined[i].Total.Weight > combined[j].Total.Weight
		}
		if combined[i].Total.Count != combined[j].Total.Count {
			return combined[i].Total.Count > combined[j].Total.Count
		}
		return combined[i].Genre < combined[j].Genre
	})

	return PreferenceSummary{
		Buckets:        bucketSummaries,
		Genres:         combined,
		BucketMetadata: registry.BucketMetadata(),
	}
}

// determineDominantBucket 找出权重严格占优的分组
// 最高权重不超过容差、或与次高权重的差距在容差内时，判定为 "balanced"
func determineDominantBucket(metrics map[string]GenreBucketMetrics, totalWeight, tolerance float64) (string, *float64) {
	topBucket := ""
	topWeight := 0.0
	secondWeight := 0.0
	for bucketID, m := range metrics {
		switch {
		case m.Weight > topWeight || (m.Weight == topWeight && topBucket == ""):
			secondWeight = topWeight
			topWeight = m.Weight
			topBucket = bucketID
		case m.Weight > secondWeight:
			secondWeight = m.Weight
		}
	}

	if topBucket == "" || topWeight <= tolerance || topWeight-secondWeight <= tolerance {
		return DominantBalanced, nil
	}
	if totalWeight > 0 {
		return topBucket, floatPtr(topWeight / totalWeight)
	}
	return topBucket, nil
}
