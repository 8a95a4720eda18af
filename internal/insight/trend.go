package insight

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
)

// ErrUnsupportedPeriod 表示请求了未知的统计周期
var ErrUnsupportedPeriod = errors.New("不支持的统计周期，请使用 day、week 或 month。")

// otherTitlesLabel 是窗口内前三名之外时长的聚合条目名
const otherTitlesLabel = "Other Titles"

// TitleMinutes 是窗口内一个游戏的时长条目
type TitleMinutes struct {
	Title   string  `json:"title"`
	Minutes float64 `json:"minutes"`
}

// GenreMinutes 是窗口内一个类型的时长条目
type GenreMinutes struct {
	Genre   string  `json:"genre"`
	Minutes float64 `json:"minutes"`
}

// TrendWindow 是一个时间窗口内的游玩画像
type TrendWindow struct {
	PeriodStart      string         `json:"period_start"`
	Label            string         `json:"label"`
	TotalMinutes     float64        `json:"total_minutes"`
	AverageSentiment *float64       `json:"average_sentiment"`
	ActiveTitles     int            `json:"active_titles"`
	SessionCount     int            `json:"session_count"`
	TopTitles        []TitleMinutes `json:"top_titles"`
	TopGenres        []GenreMinutes `json:"top_genres"`
}

// CalloutDrivers 列出触发提醒的游戏和类型
type CalloutDrivers struct {
	Titles []TitleMinutes `json:"titles"`
	Genres []GenreMinutes `json:"genres"`
}

// TrendCallout 是一条趋势提醒（激增/骤降/倦怠）
type TrendCallout struct {
	Type          string         `json:"type"`
	PeriodStart   string         `json:"period_start"`
	Label         string         `json:"label"`
	Message       string         `json:"message"`
	PercentChange *float64       `json:"percent_change"`
	Drivers       CalloutDrivers `json:"drivers"`
}

// TrendRange 记录实际观察到的日期范围和请求的过滤条件
type TrendRange struct {
	Start          *string `json:"start"`
	End            *string `json:"end"`
	RequestedStart *string `json:"requested_start"`
	RequestedEnd   *string `json:"requested_end"`
}

// TrendSummary 是游玩趋势分析的完整输出
type TrendSummary struct {
	GeneratedAt string         `json:"generated_at"`
	Period      string         `json:"period"`
	Timeline    []TrendWindow  `json:"timeline"`
	Callouts    []TrendCallout `json:"callouts"`
	Range       TrendRange     `json:"range"`
}

// windowStart 把日期归到所属窗口的起点
func windowStart(d time.Time, period string) time.Time {
	switch period {
	case "month":
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case "week":
		// ISO周：回退到本周一
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// windowLabel 生成窗口的展示名称
func windowLabel(start time.Time, period string) string {
	switch period {
	case "month":
		return start.Format("January 2006")
	case "week":
		return "Week of " + start.Format("Jan 02, 2006")
	default:
		return start.Format("Jan 02, 2006")
	}
}

type trendAccumulator struct {
	start        time.Time
	totalMinutes float64
	sessionCount int
	samples      []SentimentSample
	activeKeys   map[string]struct{}
	titleMinutes map[string]float64
	genreMinutes map[string]float64
}

// SummarizeEngagementTrend 把会话按窗口聚合并标记激增、骤降和倦怠提醒
func SummarizeEngagementTrend(sessions []session.SessionLog, games []game.Game, period string, start, end *time.Time, opts Options) (TrendSummary, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = "month"
	}
	if period != "day" && period != "week" && period != "month" {
		return TrendSummary{}, ErrUnsupportedPeriod
	}

	// 游戏快照只取一次，之后先按 id、再按标题（忽略大小写）解析
	gamesByID := make(map[uint]*game.Game, len(games))
	gamesByTitle := make(map[string]*game.Game, len(games))
	for i := range games {
		g := &games[i]
		gamesByID[g.ID] = g
		gamesByTitle[strings.ToLower(strings.TrimSpace(g.Title))] = g
	}

	windows := make(map[time.Time]*trendAccumulator)
	var observedMin, observedMax *time.Time

	for i := range sessions {
		s := &sessions[i]
		if s.PlaytimeMinutes <= 0 {
			continue
		}
		day := time.Date(s.SessionDate.Year(), s.SessionDate.Month(), s.SessionDate.Day(), 0, 0, 0, 0, time.UTC)
		if start != nil && day.Before(windowStart(*start, "day")) {
			continue
		}
		if end != nil && day.After(windowStart(*end, "day")) {
			continue
		}

		if observedMin == nil || day.Before(*observedMin) {
			d := day
			observedMin = &d
		}
		if observedMax == nil || day.After(*observedMax) {
			d := day
			observedMax = &d
		}

		ws := windowStart(day, period)
		acc, ok := windows[ws]
		if !ok {
			acc = &trendAccumulator{
				start:        ws,
				activeKeys:   make(map[string]struct{}),
				titleMinutes: make(map[string]float64),
				genreMinutes: make(map[string]float64),
			}
			windows[ws] = acc
		}

		minutes := float64(s.PlaytimeMinutes)
		acc.totalMinutes += minutes
		acc.sessionCount++
		acc.samples = append(acc.samples, s)

		key := strings.ToLower(strings.TrimSpace(s.GameTitle))
		if s.GameID != nil {
			key = fmt.Sprintf("id:%d", *s.GameID)
		}
		acc.activeKeys[key] = struct{}{}

		title := strings.TrimSpace(s.GameTitle)
		if title == "" {
			title = "未知游戏"
		}
		acc.titleMinutes[title] += minutes

		// 类型时长按所属游戏的类型均分
		var resolved *game.Game
		if s.GameID != nil {
			resolved = gamesByID[*s.GameID]
		}
		if resolved == nil {
			resolved = gamesByTitle[strings.ToLower(strings.TrimSpace(s.GameTitle))]
		}
		if resolved != nil {
			genres := NormalizeGenres(resolved.Genres())
			if len(genres) > 0 {
				share := minutes / float64(len(genres))
				for _, genre := range genres {
					acc.genreMinutes[genre] += share
				}
			}
		}
	}

	starts := make([]time.Time, 0, len(windows))
	for ws := range windows {
		starts = append(starts, ws)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	timeline := make([]TrendWindow, 0, len(starts))
	for _, ws := range starts {
		timeline = append(timeline, buildTrendWindow(windows[ws], period, opts))
	}

	callouts := detectCallouts(timeline, opts)

	summary := TrendSummary{
		Period:   period,
		Timeline: timeline,
		Callouts: callouts,
		Range: TrendRange{
			Start:          formatDatePtr(observedMin),
			End:            formatDatePtr(observedMax),
			RequestedStart: formatDatePtr(start),
			RequestedEnd:   formatDatePtr(end),
		},
	}
	return summary, nil
}

func buildTrendWindow(acc *trendAccumulator, period string, opts Options) TrendWindow {
	window := TrendWindow{
		PeriodStart:  acc.start.Format("2006-01-02"),
		Label:        windowLabel(acc.start, period),
		TotalMinutes: round2(acc.totalMinutes),
		ActiveTitles: len(acc.activeKeys),
		SessionCount: acc.sessionCount,
		TopTitles:    []TitleMinutes{},
		TopGenres:    []GenreMinutes{},
	}

	result := ComputeWeightedSentiment(acc.samples, opts.SentimentWeights)
	if result.WeightedScore != nil {
		window.AverageSentiment = floatPtr(round1(*result.WeightedScore))
	}

	titles := make([]TitleMinutes, 0, len(acc.titleMinutes))
	for title, minutes := range acc.titleMinutes {
		titles = append(titles, TitleMinutes{Title: title, Minutes: minutes})
	}
	sort.SliceStable(titles, func(i, j int) bool {
		if titles[i].Minutes != titles[j].Minutes {
			return titles[i].Minutes > titles[j].Minutes
		}
		return titles[i].Title < titles[j].Title
	})
	var otherMinutes float64
	for i, entry := range titles {
		if i < 3 {
			entry.Minutes = round2(entry.Minutes)
			window.TopTitles = append(window.TopTitles, entry)
		} else {
			otherMinutes += entry.Minutes
		}
	}
	if otherMinutes > 0 {
		window.TopTitles = append(window.TopTitles, TitleMinutes{Title: otherTitlesLabel, Minutes: round2(otherMinutes)})
	}

	genres := make([]GenreMinutes, 0, len(acc.genreMinutes))
	for genre, minutes := range acc.genreMinutes {
		genres = append(genres, GenreMinutes{Genre: genre, Minutes: minutes})
	}
	sort.SliceStable(genres, func(i, j int) bool {
		if genres[i].Minutes != genres[j].Minutes {
			return genres[i].Minutes > genres[j].Minutes
		}
		return genres[i].Genre < genres[j].Genre
	})
	if len(genres) > 5 {
		genres = genres[:5]
	}
	for i := range genres {
		genres[i].Minutes = round2(genres[i].Minutes)
	}
	window.TopGenres = genres

	return window
}

// windowDrivers 提取窗口的驱动因素：前三名游戏（去掉聚合条目）和前三类型
func windowDrivers(window TrendWindow) CalloutDrivers {
	drivers := CalloutDrivers{Titles: []TitleMinutes{}, Genres: []GenreMinutes{}}
	for _, entry := range window.TopTitles {
		if entry.Title == otherTitlesLabel {
			continue
		}
		drivers.Titles = append(drivers.Titles, entry)
	}
	genres := window.TopGenres
	if len(genres) > 3 {
		genres = genres[:3]
	}
	drivers.Genres = append(drivers.Genres, genres...)
	return drivers
}

// detectCallouts 在相邻窗口间找激增和骤降，并按窗口独立判定倦怠
func detectCallouts(timeline []TrendWindow, opts Options) []TrendCallout {
	callouts := []TrendCallout{}

	for i := range timeline {
		window := timeline[i]

		if i > 0 {
			prev := timeline[i-1]
			increase := window.TotalMinutes - prev.TotalMinutes
			decrease := prev.TotalMinutes - window.TotalMinutes

			var percent *float64
			if prev.TotalMinutes > 0 {
				percent = floatPtr(round1((window.TotalMinutes - prev.TotalMinutes) / prev.TotalMinutes * 100))
			}

			switch {
			case window.TotalMinutes >= opts.SpikeRatio*prev.TotalMinutes && increase >= opts.CalloutMinuteFloor:
				changeText := "大幅上升"
				if percent != nil {
					changeText = fmt.Sprintf("%+.1f%%", *percent)
				}
				callouts = append(callouts, TrendCallout{
					Type:          "spike",
					PeriodStart:   window.PeriodStart,
					Label:         window.Label,
					Message:       fmt.Sprintf("游玩时长从 %.0f 分钟跃升到 %.0f 分钟（%s）。", prev.TotalMinutes, window.TotalMinutes, changeText),
					PercentChange: percent,
					Drivers:       windowDrivers(window),
				})
			case prev.TotalMinutes > 0 && window.TotalMinutes <= opts.DipRatio*prev.TotalMinutes && decrease >= opts.CalloutMinuteFloor:
				changeText := "急剧下降"
				if percent != nil {
					changeText = fmt.Sprintf("%+.1f%%", *percent)
				}
				callouts = append(callouts, TrendCallout{
					Type:          "dip",
					PeriodStart:   window.PeriodStart,
					Label:         window.Label,
					Message:       fmt.Sprintf("游玩时长从 %.0f 分钟回落到 %.0f 分钟（%s）。", prev.TotalMinutes, window.TotalMinutes, changeText),
					PercentChange: percent,
					Drivers:       windowDrivers(prev),
				})
			}
		}

		if window.TotalMinutes >= opts.BurnoutMinutes && window.AverageSentiment != nil && *window.AverageSentiment <= opts.BurnoutSentimentCeiling {
			callouts = append(callouts, TrendCallout{
				Type:        "burnout",
				PeriodStart: window.PeriodStart,
				Label:       window.Label,
				Message:     fmt.Sprintf("投入了 %.0f 分钟但加权体验只有 %.1f，注意是否在硬肝。", window.TotalMinutes, *window.AverageSentiment),
				Drivers:     windowDrivers(window),
			})
		}
	}

	return callouts
}
