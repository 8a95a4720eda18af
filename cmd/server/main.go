package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pa816859-hue/backlog-tier-backend/api"
	"github.com/pa816859-hue/backlog-tier-backend/internal/insight"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/config"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/health"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/shutdown"
	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/startup"
	"github.com/pa816859-hue/backlog-tier-backend/internal/status"
	"github.com/pa816859-hue/backlog-tier-backend/pkg/lifecycle"
)

func main() {
	// 1. 加载配置并初始化状态表和洞察参数
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("配置加载失败，无法启动: %v", err))
	}
	if err := status.Configure(cfg.Library); err != nil {
		panic(fmt.Sprintf("状态表配置无效: %v", err))
	}
	insight.Configure(cfg.Insights)

	// 2. 初始化SQLite和Redis连接
	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 3. 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 4. 阻塞式执行一次启动后健康检查
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()

	// 5. 异步启动后台的持续健康检查器
	manager := lifecycle.NewManager()
	healthHandle, err := manager.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(fmt.Sprintf("无法创建健康检查器句柄: %v", err))
	}
	go health.StartRedisHealthCheck(healthHandle)

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 6. 阻塞等待停机信号，再依次关闭HTTP服务器和后台服务
	coordinator := shutdown.NewCoordinator(manager)
	coordinator.ListenForSignalsAndShutdown(server)
}
