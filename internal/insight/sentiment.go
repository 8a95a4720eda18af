package insight

import (
	"math"
	"strings"
)

// SentimentSample 是情感加权的最小输入能力
// 真实的会话记录和按类型拆分出的虚拟样本都满足这个接口
type SentimentSample interface {
	SentimentLabel() string
	Minutes() float64
}

// SentimentResult 是一次情感加权的完整结果
type SentimentResult struct {
	// WeightedScore 是0-100的加权平均分；没有任何可识别标签的时长时为nil
	WeightedScore *float64

	// TotalMinutes 是全部正时长之和，与标签是否可识别无关
	TotalMinutes float64

	// WeightedMinutes 是实际参与加权的时长之和
	WeightedMinutes float64
}

// defaultSentimentWeights 返回默认的标签权重表
func defaultSentimentWeights() map[string]float64 {
	return map[string]float64{
		"good":     100,
		"mediocre": 50,
		"bad":      0,
	}
}

// ComputeWeightedSentiment 按游玩时长加权计算情感得分
// overrides 中的条目会覆盖默认权重表；未识别的标签只计入总时长
// 非正时长的样本被完全排除。纯函数，无副作用
func ComputeWeightedSentiment(samples []SentimentSample, overrides map[string]float64) SentimentResult {
	weights := defaultSentimentWeights()
	for label, weight := range overrides {
		weights[strings.ToLower(strings.TrimSpace(label))] = weight
	}

	var totalMinutes, weightedMinutes, weightedSum float64
	for _, sample := range samples {
		minutes := sample.Minutes()
		if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
			continue
		}
		totalMinutes += minutes

		label := strings.ToLower(strings.TrimSpace(sample.SentimentLabel()))
		weight, ok := weights[label]
		if !ok {
			continue
		}
		weightedMinutes += minutes
		weightedSum += minutes * weight
	}

	result := SentimentResult{
		TotalMinutes:    totalMinutes,
		WeightedMinutes: weightedMinutes,
	}
	if weightedMinutes > 0 {
		score := weightedSum / weightedMinutes
		result.WeightedScore = &score
	}
	return result
}

// sentimentSample 是按类型拆分后携带部分时长的虚拟样本
type sentimentSample struct {
	label   string
	minutes float64
}

func (s sentimentSample) SentimentLabel() string { return s.label }
func (s sentimentSample) Minutes() float64       { return s.minutes }
