package insight

import (
	"math"
	"strings"
)

// NormalizeGenres 规范化原始类型列表：去除首尾空白并丢弃空串
// 不做去重，重复标签按原样保留
func NormalizeGenres(genres []string) []string {
	normalized := make([]string, 0, len(genres))
	for _, genre := range genres {
		if label := strings.TrimSpace(genre); label != "" {
			normalized = append(normalized, label)
		}
	}
	return normalized
}

// 工具函数：四舍五入到指定小数位
func round2(v float64) float64 {
	return roundTo(v, 100)
}

func round1(v float64) float64 {
	return roundTo(v, 10)
}

func roundTo(v float64, factor float64) float64 {
	return math.Round(v*factor) / factor
}

func floatPtr(v float64) *float64 {
	return &v
}
