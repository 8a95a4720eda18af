package status

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/config"
)

// Definition 描述了一个游戏状态及其在洞察分析中的归属
type Definition struct {
	// Value 是状态的规范值，例如 "backlog"
	Value string `json:"value"`

	// Label 是状态的展示名称
	Label string `json:"label"`

	// InsightBucket 是该状态在洞察聚合中所属的分组ID
	InsightBucket string `json:"insight_bucket"`

	// RequiresPurchaseDate 表示该状态是否意味着已购入（需要购买日期）
	RequiresPurchaseDate bool `json:"requires_purchase_date"`
}

// BucketInfo 是洞察分组的展示元数据
type BucketInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Registry 是状态表的只读视图
// 聚合逻辑通过它查询状态→分组映射，因此对状态的数量和划分方式完全无感
type Registry struct {
	defaultStatus string
	defs          []Definition
	byValue       map[string]Definition
	buckets       []BucketInfo
	bucketByID    map[string]BucketInfo
}

// NewRegistry 根据状态定义列表构建一个Registry
// 未提供元数据的分组会得到一条仅含ID和Label的占位元数据
func NewRegistry(defs []Definition, buckets []BucketInfo, defaultStatus string) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("状态表不能为空")
	}

	r := &Registry{
		defs:       make([]Definition, 0, len(defs)),
		byValue:    make(map[string]Definition, len(defs)),
		bucketByID: make(map[string]BucketInfo),
	}

	for _, def := range defs {
		value := strings.ToLower(strings.TrimSpace(def.Value))
		if value == "" {
			return nil, fmt.Errorf("状态值不能为空")
		}
		if _, exists := r.byValue[value]; exists {
			return nil, fmt.Errorf("状态 '%s' 重复定义", value)
		}
		def.Value = value
		if def.InsightBucket == "" {
			def.InsightBucket = value
		}
		r.defs = append(r.defs, def)
		r.byValue[value] = def
	}

	for _, bucket := range buckets {
		if bucket.ID == "" {
			continue
		}
		r.bucketByID[bucket.ID] = bucket
		r.buckets = append(r.buckets, bucket)
	}

	// 状态引用了但未声明元数据的分组，补一条占位记录
	for _, def := range r.defs {
		if _, ok := r.bucketByID[def.InsightBucket]; !ok {
			info := BucketInfo{ID: def.InsightBucket, Label: def.Label}
			r.bucketByID[def.InsightBucket] = info
			r.buckets = append(r.buckets, info)
		}
	}

	r.defaultStatus = strings.ToLower(strings.TrimSpace(defaultStatus))
	if r.defaultStatus == "" {
		r.defaultStatus = r.defs[0].Value
	}
	if _, ok := r.byValue[r.defaultStatus]; !ok {
		return nil, fmt.Errorf("默认状态 '%s' 不在状态表中", r.defaultStatus)
	}

	return r, nil
}

// NewRegistryFromConfig 从应用配置构建Registry
func NewRegistryFromConfig(cfg config.LibraryConfig) (*Registry, error) {
	defs := make([]Definition, 0, len(cfg.Statuses))
	for _, s := range cfg.Statuses {
		defs = append(defs, Definition{
			Value:                s.Value,
			Label:                s.Label,
			InsightBucket:        s.Bucket,
			RequiresPurchaseDate: s.RequiresPurchaseDate,
		})
	}
	buckets := make([]BucketInfo, 0, len(cfg.Buckets))
	for _, b := range cfg.Buckets {
		buckets = append(buckets, BucketInfo{
			ID:          b.ID,
			Label:       b.Label,
			Description: b.Description,
			Color:       b.Color,
		})
	}
	return NewRegistry(defs, buckets, cfg.DefaultStatus)
}

// Default 返回默认状态值
func (r *Registry) Default() string {
	return r.defaultStatus
}

// Normalize 将原始状态字符串规范化为小写的规范值
// 空字符串会落到默认状态；不保证结果一定在状态表内
func (r *Registry) Normalize(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return r.defaultStatus
	}
	return normalized
}

// Validate 规范化并校验状态值，返回规范值
func (r *Registry) Validate(value string) (string, error) {
	normalized := r.Normalize(value)
	if _, ok := r.byValue[normalized]; !ok {
		allowed := make([]string, 0, len(r.byValue))
		for v := range r.byValue {
			allowed = append(allowed, v)
		}
		sort.Strings(allowed)
		return "", fmt.Errorf("状态必须是 %s 之一", strings.Join(allowed, ", "))
	}
	return normalized, nil
}

// Contains 判断一个规范值是否是合法状态
func (r *Registry) Contains(value string) bool {
	_, ok := r.byValue[value]
	return ok
}

// RequiresPurchaseDate 判断状态是否要求购买日期
func (r *Registry) RequiresPurchaseDate(value string) bool {
	def, ok := r.byValue[r.Normalize(value)]
	return ok && def.RequiresPurchaseDate
}

// BucketFor 返回状态所属的洞察分组ID；未知状态返回空字符串
func (r *Registry) BucketFor(value string) string {
	def, ok := r.byValue[r.Normalize(value)]
	if !ok {
		return ""
	}
	return def.InsightBucket
}

// Definitions 按声明顺序返回全部状态定义
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Values 按声明顺序返回全部状态值
func (r *Registry) Values() []string {
	out := make([]string, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def.Value)
	}
	return out
}

// OwnedStatuses 返回所有要求购买日期的状态值（即已购入状态）
func (r *Registry) OwnedStatuses() []string {
	out := make([]string, 0, len(r.defs))
	for _, def := range r.defs {
		if def.RequiresPurchaseDate {
			out = append(out, def.Value)
		}
	}
	return out
}

// Buckets 按声明顺序返回全部洞察分组
func (r *Registry) Buckets() []BucketInfo {
	out := make([]BucketInfo, len(r.buckets))
	copy(out, r.buckets)
	return out
}

// BucketMetadata 返回分组ID→元数据的映射
func (r *Registry) BucketMetadata() map[string]BucketInfo {
	out := make(map[string]BucketInfo, len(r.bucketByID))
	for id, info := range r.bucketByID {
		out[id] = info
	}
	return out
}

// --- 全局Registry ---

var globalRegistry *Registry

// Configure 在应用启动时设置全局Registry
func Configure(cfg config.LibraryConfig) error {
	r, err := NewRegistryFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("无法构建状态表: %w", err)
	}
	globalRegistry = r
	return nil
}

// Get 返回全局Registry
// 必须在 Configure 之后调用
func Get() *Registry {
	if globalRegistry == nil {
		panic("状态表尚未初始化，请先调用 status.Configure")
	}
	return globalRegistry
}
