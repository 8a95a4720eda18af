package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Library  LibraryConfig  `mapstructure:"library"`
	Insights InsightsConfig `mapstructure:"insights"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite数据库文件的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// LibraryConfig 定义了游戏库的状态枚举及其洞察分组
// 状态表是注入式配置：聚合逻辑本身不关心具体有几个状态
type LibraryConfig struct {
	DefaultStatus string             `mapstructure:"defaultStatus"`
	Statuses      []StatusConfig     `mapstructure:"statuses"`
	Buckets       []BucketInfoConfig `mapstructure:"buckets"`
}

// StatusConfig 定义了单个游戏状态及其所属的洞察分组
type StatusConfig struct {
	Value                string `mapstructure:"value"`
	Label                string `mapstructure:"label"`
	Bucket               string `mapstructure:"bucket"`
	RequiresPurchaseDate bool   `mapstructure:"requiresPurchaseDate"`
}

// BucketInfoConfig 定义了洞察分组的展示元数据
type BucketInfoConfig struct {
	ID          string `mapstructure:"id"`
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`
	Color       string `mapstructure:"color"`
}

// InsightsConfig 定义了洞察分析的可调参数
// 这些阈值会直接影响callout的灵敏度，因此不做硬编码
type InsightsConfig struct {
	CacheTTLSeconds         int                `mapstructure:"cacheTTLSeconds"`
	DefaultCurrency         string             `mapstructure:"defaultCurrency"`
	DominantTolerance       float64            `mapstructure:"dominantTolerance"`
	SpikeRatio              float64            `mapstructure:"spikeRatio"`
	DipRatio                float64            `mapstructure:"dipRatio"`
	CalloutMinuteFloor      float64            `mapstructure:"calloutMinuteFloor"`
	BurnoutMinutes          float64            `mapstructure:"burnoutMinutes"`
	BurnoutSentimentCeiling float64            `mapstructure:"burnoutSentimentCeiling"`
	BacklogLimit            int                `mapstructure:"backlogLimit"`
	PriceLimit              int                `mapstructure:"priceLimit"`
	SentimentWeights        map[string]float64 `mapstructure:"sentimentWeights"`
}

// setDefaults 注册所有配置项的默认值
// 这样即使config.yaml缺失或不完整，应用也能以合理的默认配置启动
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})

	v.SetDefault("database.sqlite.path", "library.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("library.defaultStatus", "backlog")

	v.SetDefault("insights.cacheTTLSeconds", 60)
	v.SetDefault("insights.defaultCurrency", "MYR")
	v.SetDefault("insights.dominantTolerance", 1e-6)
	v.SetDefault("insights.spikeRatio", 1.5)
	v.SetDefault("insights.dipRatio", 0.6)
	v.SetDefault("insights.calloutMinuteFloor", 120)
	v.SetDefault("insights.burnoutMinutes", 240)
	v.SetDefault("insights.burnoutSentimentCeiling", 45)
	v.SetDefault("insights.backlogLimit", 8)
	v.SetDefault("insights.priceLimit", 5)
	v.SetDefault("insights.sentimentWeights", map[string]float64{
		"good":     100,
		"mediocre": 50,
		"bad":      0,
	})
}

// defaultStatusTable 返回内置的状态表
// 配置文件中的 library.statuses 一旦非空就会完全覆盖这张表
func defaultStatusTable() ([]StatusConfig, []BucketInfoConfig) {
	statuses := []StatusConfig{
		{Value: "backlog", Label: "Backlog", Bucket: "backlog", RequiresPurchaseDate: true},
		{Value: "playing", Label: "Playing", Bucket: "playing", RequiresPurchaseDate: true},
		{Value: "occasional", Label: "Occasional", Bucket: "occasional", RequiresPurchaseDate: true},
		{Value: "story_clear", Label: "Story clear", Bucket: "story_clear", RequiresPurchaseDate: true},
		{Value: "full_clear", Label: "Full clear", Bucket: "full_clear", RequiresPurchaseDate: true},
		{Value: "dropped", Label: "Dropped", Bucket: "dropped", RequiresPurchaseDate: true},
		{Value: "wishlist", Label: "Wishlist", Bucket: "wishlist", RequiresPurchaseDate: false},
	}
	buckets := []BucketInfoConfig{
		{ID: "backlog", Label: "Backlog", Description: "已购入但还未开玩的游戏", Color: "#6366f1"},
		{ID: "playing", Label: "Playing", Description: "正在推进的游戏", Color: "#22c55e"},
		{ID: "occasional", Label: "Occasional", Description: "偶尔打开玩玩的游戏", Color: "#14b8a6"},
		{ID: "story_clear", Label: "Story clear", Description: "主线已通关的游戏", Color: "#eab308"},
		{ID: "full_clear", Label: "Full clear", Description: "全收集/白金通关的游戏", Color: "#f97316"},
		{ID: "dropped", Label: "Dropped", Description: "已弃坑的游戏", Color: "#64748b"},
		{ID: "wishlist", Label: "Wishlist", Description: "还未购入的愿望单游戏", Color: "#ec4899"},
	}
	return statuses, buckets
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config") // 文件名 (不带扩展名)
	v.SetConfigType("yaml")   // 文件类型

	// 2. 添加配置文件搜索路径
	// 可以添加多个路径，Viper会按顺序查找
	v.AddConfigPath("./config") // `config/config.yaml`
	v.AddConfigPath(".")        // `./config.yaml` (如果在根目录)

	// 3. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=":8888"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 注册默认值后读取配置文件
	// 找不到配置文件时不报错，直接使用默认配置
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// 5. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 6. 配置文件未提供状态表时，回退到内置的状态表
	if len(cfg.Library.Statuses) == 0 {
		cfg.Library.Statuses, cfg.Library.Buckets = defaultStatusTable()
	}

	// 7. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}
