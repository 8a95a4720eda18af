package game

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
	"gorm.io/gorm"
)

// gameRequestBody 定义了创建/更新游戏时请求体的JSON结构
// 指针字段为nil表示该字段未提交，更新时保持原值
type gameRequestBody struct {
	Title                 *string   `json:"title"`
	Status                *string   `json:"status"`
	Modes                 *[]string `json:"modes"`
	Genres                *[]string `json:"genres"`
	SteamAppID            *string   `json:"steam_app_id"`
	Thoughts              *string   `json:"thoughts"`
	IconURL               *string   `json:"icon_url"`
	PurchaseDate          *string   `json:"purchase_date"`
	StartDate             *string   `json:"start_date"`
	FinishDate            *string   `json:"finish_date"`
	PriceAmount           *float64  `json:"price_amount"`
	PriceCurrency         *string   `json:"price_currency"`
	PurchasePriceAmount   *float64  `json:"purchase_price_amount"`
	PurchasePriceCurrency *string   `json:"purchase_price_currency"`
}

// parseDateField 解析 "YYYY-MM-DD" 格式的日期
// 空字符串表示清除该日期；required时空值会报错
func parseDateField(raw *string, label string, required bool, requiredMessage string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		if required {
			message := requiredMessage
			if message == "" {
				message = fmt.Sprintf("%s不能为空。", label)
			}
			return nil, errors.New(message)
		}
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%s格式无效，应为YYYY-MM-DD。", label)
	}
	return &parsed, nil
}

// cleanStringList 去除列表中每个元素的首尾空白并丢弃空串
func cleanStringList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

// cleanOptionalText 去除首尾空白，空串归一为nil
func cleanOptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanCurrency 规范化币种代码为大写
func cleanCurrency(value *string) *string {
	cleaned := cleanOptionalText(value)
	if cleaned == nil {
		return nil
	}
	upper := strings.ToUpper(*cleaned)
	return &upper
}

// ListGames 返回全部游戏，按ELO降序
func ListGames(c *gin.Context) {
	games, err := GetAllGames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询游戏列表失败: " + err.Error()})
		return
	}

	payload := make([]DTO, 0, len(games))
	for i := range games {
		payload = append(payload, games[i].ToDTO())
	}
	c.JSON(http.StatusOK, payload)
}

// CreateGame 处理新建游戏条目的请求
func CreateGame(c *gin.Context) {
	var body gameRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	registry := status.Get()

	title := ""
	if body.Title != nil {
		title = strings.TrimSpace(*body.Title)
	}
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "游戏标题不能为空。"})
		return
	}

	statusValue := registry.Default()
	if body.Status != nil {
		validated, err := registry.Validate(*body.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		statusValue = validated
	}

	purchaseDate, err := parseDateField(body.PurchaseDate, "购买日期",
		registry.RequiresPurchaseDate(statusValue), "该状态的游戏必须填写购买日期。")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startDate, err := parseDateField(body.StartDate, "开始日期", false, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	finishDate, err := parseDateField(body.FinishDate, "通关日期", false, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if body.PriceAmount != nil && *body.PriceAmount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "定价不能为负数。"})
		return
	}
	if body.PurchasePriceAmount != nil && *body.PurchasePriceAmount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "购入价不能为负数。"})
		return
	}

	exists, err := TitleExists(title, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "检查标题是否重复失败: " + err.Error()})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "已存在同名游戏。"})
		return
	}

	newGame := Game{
		Title:                 title,
		Status:                statusValue,
		SteamAppID:            cleanOptionalText(body.SteamAppID),
		IconURL:               cleanOptionalText(body.IconURL),
		Thoughts:              cleanOptionalText(body.Thoughts),
		PurchaseDate:          purchaseDate,
		StartDate:             startDate,
		FinishDate:            finishDate,
		PriceAmount:           body.PriceAmount,
		PriceCurrency:         cleanCurrency(body.PriceCurrency),
		PurchasePriceAmount:   body.PurchasePriceAmount,
		PurchasePriceCurrency: cleanCurrency(body.PurchasePriceCurrency),
		EloRating:             1500.0,
	}
	if body.Modes != nil {
		newGame.SetModes(cleanStringList(*body.Modes))
	} else {
		newGame.SetModes(nil)
	}
	if body.Genres != nil {
		newGame.SetGenres(cleanStringList(*body.Genres))
	} else {
		newGame.SetGenres(nil)
	}

	if err := database.DB.Create(&newGame).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存游戏失败: " + err.Error()})
		return
	}

	database.DropInsightCache()
	c.JSON(http.StatusCreated, newGame.ToDTO())
}

// UpdateGame 处理更新游戏条目的请求
// 未提交的字段保持原值
func UpdateGame(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的游戏ID。"})
		return
	}

	existing, err := GetGameByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "找不到该游戏。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询游戏失败: " + err.Error()})
		return
	}

	var body gameRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	registry := status.Get()

	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "游戏标题不能为空。"})
			return
		}
		duplicated, err := TitleExists(title, existing.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "检查标题是否重复失败: " + err.Error()})
			return
		}
		if duplicated {
			c.JSON(http.StatusBadRequest, gin.H{"error": "已存在同名游戏。"})
			return
		}
		existing.Title = title
	}

	if body.Status != nil {
		validated, err := registry.Validate(*body.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		existing.Status = validated
	}

	if body.PurchaseDate != nil {
		purchaseDate, err := parseDateField(body.PurchaseDate, "购买日期",
			registry.RequiresPurchaseDate(existing.Status), "该状态的游戏必须填写购买日期。")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		existing.PurchaseDate = purchaseDate
	} else if registry.RequiresPurchaseDate(existing.Status) && existing.PurchaseDate == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "该状态的游戏必须填写购买日期。"})
		return
	}

	if body.StartDate != nil {
		startDate, err := parseDateField(body.StartDate, "开始日期", false, "")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		existing.StartDate = startDate
	}
	if body.FinishDate != nil {
		finishDate, err := parseDateField(body.FinishDate, "通关日期", false, "")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		existing.FinishDate = finishDate
	}

	if body.Modes != nil {
		existing.SetModes(cleanStringList(*body.Modes))
	}
	if body.Genres != nil {
		existing.SetGenres(cleanStringList(*body.Genres))
	}
	if body.SteamAppID != nil {
		existing.SteamAppID = cleanOptionalText(body.SteamAppID)
	}
	if body.IconURL != nil {
		existing.IconURL = cleanOptionalText(body.IconURL)
	}
	if body.Thoughts != nil {
		existing.Thoughts = cleanOptionalText(body.Thoughts)
	}
	if body.PriceAmount != nil {
		if *body.PriceAmount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "定价不能为负数。"})
			return
		}
		existing.PriceAmount = body.PriceAmount
	}
	if body.PriceCurrency != nil {
		existing.PriceCurrency = cleanCurrency(body.PriceCurrency)
	}
	if body.PurchasePriceAmount != nil {
		if *body.PurchasePriceAmount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "购入价不能为负数。"})
			return
		}
		existing.PurchasePriceAmount = body.PurchasePriceAmount
	}
	if body.PurchasePriceCurrency != nil {
		existing.PurchasePriceCurrency = cleanCurrency(body.PurchasePriceCurrency)
	}

	if err := database.DB.Save(existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存游戏失败: " + err.Error()})
		return
	}

	database.DropInsightCache()
	c.JSON(http.StatusOK, existing.ToDTO())
}

// DeleteGame 删除一个游戏条目
// 关联的会话记录保留但game_id置空；关联的对比记录直接删除
func DeleteGame(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的游戏ID。"})
		return
	}

	existing, err := GetGameByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "找不到该游戏。"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询游戏失败: " + err.Error()})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 会话记录属于session模块，对比记录属于ranking模块
		// 这里按表名做级联清理，避免包间循环依赖
		if err := tx.Table("session_logs").Where("game_id = ?", existing.ID).
			Update("game_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM comparisons WHERE game_a_id = ? OR game_b_id = ?",
			existing.ID, existing.ID).Error; err != nil {
			return err
		}
		return tx.Delete(existing).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除游戏失败: " + err.Error()})
		return
	}

	database.DropInsightCache()
	c.JSON(http.StatusOK, gin.H{"message": "游戏已删除。"})
}
