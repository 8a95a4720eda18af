package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/insight"
	"github.com/pa816859-hue/backlog-tier-backend/internal/ranking"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
	"github.com/pa816859-hue/backlog-tier-backend/internal/settings"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 状态枚举，供前端渲染下拉框和分组
		api.GET("/statuses", status.ListStatuses)

		// 游戏库相关的路由组
		gameRoutes := api.Group("/games")
		{
			gameRoutes.GET("", game.ListGames)
			gameRoutes.POST("", game.CreateGame)
			gameRoutes.PUT("/:id", game.UpdateGame)
			gameRoutes.DELETE("/:id", game.DeleteGame)
		}

		// 游玩会话相关的路由组
		sessionRoutes := api.Group("/sessions")
		{
			sessionRoutes.GET("", session.ListSessions)
			sessionRoutes.POST("", session.CreateSession)
			sessionRoutes.DELETE("/:id", session.DeleteSession)
		}

		// 对比排名相关的路由组
		rankingRoutes := api.Group("/rankings/:status")
		{
			rankingRoutes.GET("", ranking.GetRankingTable)
			rankingRoutes.GET("/pair", ranking.GetPair)
			rankingRoutes.POST("/compare", ranking.SubmitComparisonHandler)
		}

		// 洞察分析相关的路由组
		insightRoutes := api.Group("/insights")
		{
			insightRoutes.GET("/genres", insight.GetGenrePreferences)
			insightRoutes.GET("/genre-sentiment", insight.GetGenreSentiment)
			insightRoutes.GET("/genre-interest", insight.GetGenreInterest)
			insightRoutes.GET("/lifecycle", insight.GetLifecycleMetrics)
			insightRoutes.GET("/price", insight.GetPriceInsights)
			insightRoutes.GET("/engagement-trend", insight.GetEngagementTrend)
		}

		// 设置相关的路由
		api.POST("/settings/purge-data", settings.PurgeData)
	}
}
