package game

import (
	"encoding/json"
	"time"
)

// Game 定义了数据库中游戏条目的数据结构
type Game struct {
	ID uint `gorm:"primaryKey"`

	// Title 是游戏标题，全库唯一
	Title string `gorm:"uniqueIndex;not null"`

	// Status 是游戏的当前状态，取值由状态表约束
	Status string `gorm:"not null;index"`

	// ModesRaw / GenresRaw 以JSON文本存储字符串列表
	ModesRaw  string `gorm:"not null;default:'[]'"`
	GenresRaw string `gorm:"not null;default:'[]'"`

	// SteamAppID / IconURL 是导入时记录的外部元数据
	SteamAppID *string
	IconURL    *string

	// Thoughts 是玩家自己的随想备注
	Thoughts *string

	// --- 生命周期日期 ---

	PurchaseDate *time.Time `gorm:"type:date"`
	StartDate    *time.Time `gorm:"type:date"`
	FinishDate   *time.Time `gorm:"type:date"`

	// --- 价格信息 ---

	// PriceAmount / PriceCurrency 是商店页面上的定价
	PriceAmount   *float64
	PriceCurrency *string

	// PurchasePriceAmount / PurchasePriceCurrency 是实际购入价
	PurchasePriceAmount   *float64
	PurchasePriceCurrency *string

	// EloRating 是该游戏的ELO分数，仅由排名引擎修改
	EloRating float64 `gorm:"not null;default:1500"`

	CreatedAt time.Time
}

// Genres 解析GenresRaw并返回类型列表
func (g *Game) Genres() []string {
	return decodeStringList(g.GenresRaw)
}

// SetGenres 将类型列表序列化到GenresRaw
func (g *Game) SetGenres(genres []string) {
	g.GenresRaw = encodeStringList(genres)
}

// Modes 解析ModesRaw并返回模式列表
func (g *Game) Modes() []string {
	return decodeStringList(g.ModesRaw)
}

// SetModes 将模式列表序列化到ModesRaw
func (g *Game) SetModes(modes []string) {
	g.ModesRaw = encodeStringList(modes)
}

func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{}
	}
	if values == nil {
		return []string{}
	}
	return values
}

func encodeStringList(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}
