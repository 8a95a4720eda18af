package insight

import (
	"sort"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// GenreBucketSentiment 是一个类型在单个分组内的情感聚合
type GenreBucketSentiment struct {
	WeightedSentiment    *float64 `json:"weighted_sentiment"`
	TotalPlaytimeMinutes float64  `json:"total_playtime_minutes"`
	SessionCount         int      `json:"session_count"`
}

// GenreSentimentEntry 是单个类型的情感聚合结果
type GenreSentimentEntry struct {
	Genre                string                          `json:"genre"`
	WeightedSentiment    *float64                        `json:"weighted_sentiment"`
	TotalPlaytimeMinutes float64                         `json:"total_playtime_minutes"`
	SessionCount         int                             `json:"session_count"`
	Buckets              map[string]GenreBucketSentiment `json:"buckets"`
}

// GenreSentimentSummary 是按类型聚合情感的完整输出
type GenreSentimentSummary struct {
	GeneratedAt string                `json:"generated_at"`
	Genres      []GenreSentimentEntry `json:"genres"`
}

// SummarizeGenreSentiment 把会话记录关联到游戏并按类型聚合加权情感
// 关联优先用game_id，退而用冗余标题；无法关联或无类型的会话被跳过。
// 每条会话的时长在游戏的全部类型间均分
func SummarizeGenreSentiment(sessions []session.SessionLog, games []game.Game, registry *status.Registry, opts Options) GenreSentimentSummary {
	byID := make(map[uint]*game.Game, len(games))
	byTitle := make(map[string]*game.Game, len(games))
	for i := range games {
		byID[games[i].ID] = &games[i]
		byTitle[games[i].Title] = &games[i]
	}

	type genreAccum struct {
		samples       []SentimentSample
		playtime      float64
		sessionCount  int
		bucketSamples map[string][]SentimentSample
		bucketMinutes map[string]float64
	}
	accums := make(map[string]*genreAccum)

	for i := range sessions {
		s := &sessions[i]

		var g *game.Game
		if s.GameID != nil {
			g = byID[*s.GameID]
		}
		if g == nil {
			g = byTitle[s.GameTitle]
		}
		if g == nil {
			continue
		}

		genres := NormalizeGenres(g.Genres())
		if len(genres) == 0 {
			continue
		}

		minutes := float64(s.PlaytimeMinutes)
		if minutes <= 0 {
			continue
		}

		share := minutes / float64(len(genres))
		label := s.SentimentLabel()
		bucketID := registry.BucketFor(g.Status)

		for _, genre := range genres {
			accum := accums[genre]
			if accum == nil {
				accum = &genreAccum{
					bucketSamples: make(map[string][]SentimentSample),
					bucketMinutes: make(map[string]float64),
				}
				accums[genre] = accum
			}
			accum.samples = append(accum.samples, sentimentSample{label: label, minutes: share})
			accum.playtime += share
			accum.sessionCount++

			if bucketID != "" {
				accum.bucketSamples[bucketID] = append(accum.bucketSamples[bucketID],
					sentimentSample{label: label, minutes: share})
				accum.bucketMinutes[bucketID] += share
			}
		}
	}

	entries := make([]GenreSentimentEntry, 0, len(accums))
	for genre, accum := range accums {
		result := ComputeWeightedSentiment(accum.samples, opts.SentimentWeights)

		bucketSummary := make(map[string]GenreBucketSentiment, len(accum.bucketSamples))
		for bucketID, samples := range accum.bucketSamples {
			bucketResult := ComputeWeightedSentiment(samples, opts.SentimentWeights)
			bucketSummary[bucketID] = GenreBucketSentiment{
				WeightedSentiment:    bucketResult.WeightedScore,
				TotalPlaytimeMinutes: accum.bucketMinutes[bucketID],
				SessionCount:         len(samples),
			}
		}

		entries = append(entries, GenreSentimentEntry{
			Genre:                genre,
			WeightedSentiment:    result.WeightedScore,
			TotalPlaytimeMinutes: accum.playtime,
			SessionCount:         accum.sessionCount,
			Buckets:              bucketSummary,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPlaytimeMinutes != entries[j].TotalPlaytimeMinutes {
			return entries[i].TotalPlaytimeMinutes > entries[j].TotalPlaytimeMinutes
		}
		return entries[i].Genre < entries[j].Genre
	})

	return GenreSentimentSummary{Genres: entries}
}
