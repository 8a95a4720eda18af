package insight

import (
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/config"
)

// Options 汇集了洞察分析的全部可调参数
// 主导分组的容差和spike/dip的阈值会直接影响结论的灵敏度，因此全部可配置
type Options struct {
	// DominantTolerance 是判定主导分组时的权重容差
	DominantTolerance float64

	// SpikeRatio / DipRatio / CalloutMinuteFloor 控制趋势callout的触发条件
	SpikeRatio         float64
	DipRatio           float64
	CalloutMinuteFloor float64

	// BurnoutMinutes / BurnoutSentimentCeiling 控制“高时长低情绪”callout
	BurnoutMinutes          float64
	BurnoutSentimentCeiling float64

	// BacklogLimit 是积压老化列表的默认长度
	BacklogLimit int

	// PriceLimit 是价格洞察各个榜单的默认长度
	PriceLimit int

	// DefaultCurrency 是金额存在但币种缺失时使用的币种代码
	DefaultCurrency string

	// SentimentWeights 覆盖默认的情感标签权重表
	SentimentWeights map[string]float64
}

// DefaultOptions 返回内置的默认参数
func DefaultOptions() Options {
	return Options{
		DominantTolerance:       1e-6,
		SpikeRatio:              1.5,
		DipRatio:                0.6,
		CalloutMinuteFloor:      120,
		BurnoutMinutes:          240,
		BurnoutSentimentCeiling: 45,
		BacklogLimit:            8,
		PriceLimit:              5,
		DefaultCurrency:         "MYR",
		SentimentWeights:        nil,
	}
}

var (
	configuredOptions = DefaultOptions()

	// CacheTTL 是洞察结果在Redis中的缓存时长
	CacheTTL = 1 * time.Minute
)

// Configure 在应用启动时用配置文件中的参数覆盖默认值
func Configure(cfg config.InsightsConfig) {
	opts := DefaultOptions()
	if cfg.DominantTolerance > 0 {
		opts.DominantTolerance = cfg.DominantTolerance
	}
	if cfg.SpikeRatio > 0 {
		opts.SpikeRatio = cfg.SpikeRatio
	}
	if cfg.DipRatio > 0 {
		opts.DipRatio = cfg.DipRatio
	}
	if cfg.CalloutMinuteFloor > 0 {
		opts.CalloutMinuteFloor = cfg.CalloutMinuteFloor
	}
	if cfg.BurnoutMinutes > 0 {
		opts.BurnoutMinutes = cfg.BurnoutMinutes
	}
	if cfg.BurnoutSentimentCeiling > 0 {
		opts.BurnoutSentimentCeiling = cfg.BurnoutSentimentCeiling
	}
	if cfg.BacklogLimit > 0 {
		opts.BacklogLimit = cfg.BacklogLimit
	}
	if cfg.PriceLimit > 0 {
		opts.PriceLimit = cfg.PriceLimit
	}
	if cfg.DefaultCurrency != "" {
		opts.DefaultCurrency = cfg.DefaultCurrency
	}
	if len(cfg.SentimentWeights) > 0 {
		opts.SentimentWeights = cfg.SentimentWeights
	}
	configuredOptions = opts

	if cfg.CacheTTLSeconds > 0 {
		CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	}
}

// ConfiguredOptions 返回当前生效的参数
func ConfiguredOptions() Options {
	return configuredOptions
}
