package game

import "time"

// DTO 是游戏条目的对外表示
// 日期字段序列化为 "YYYY-MM-DD"，时间戳使用RFC3339
type DTO struct {
	ID                    uint     `json:"id"`
	Title                 string   `json:"title"`
	Status                string   `json:"status"`
	Modes                 []string `json:"modes"`
	Genres                []string `json:"genres"`
	SteamAppID            *string  `json:"steam_app_id"`
	IconURL               *string  `json:"icon_url"`
	Thoughts              *string  `json:"thoughts"`
	PurchaseDate          *string  `json:"purchase_date"`
	StartDate             *string  `json:"start_date"`
	FinishDate            *string  `json:"finish_date"`
	PriceAmount           *float64 `json:"price_amount"`
	PriceCurrency         *string  `json:"price_currency"`
	PurchasePriceAmount   *float64 `json:"purchase_price_amount"`
	PurchasePriceCurrency *string  `json:"purchase_price_currency"`
	EloRating             float64  `json:"elo_rating"`
	CreatedAt             string   `json:"created_at"`
}

// ToDTO 将模型转换为对外表示
func (g *Game) ToDTO() DTO {
	return DTO{
		ID:                    g.ID,
		Title:                 g.Title,
		Status:                g.Status,
		Modes:                 g.Modes(),
		Genres:                g.Genres(),
		SteamAppID:            g.SteamAppID,
		IconURL:               g.IconURL,
		Thoughts:              g.Thoughts,
		PurchaseDate:          formatDate(g.PurchaseDate),
		StartDate:             formatDate(g.StartDate),
		FinishDate:            formatDate(g.FinishDate),
		PriceAmount:           g.PriceAmount,
		PriceCurrency:         g.PriceCurrency,
		PurchasePriceAmount:   g.PurchasePriceAmount,
		PurchasePriceCurrency: g.PurchasePriceCurrency,
		EloRating:             g.EloRating,
		CreatedAt:             g.CreatedAt.Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
