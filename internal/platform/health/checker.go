package health

import (
	"context"
	"fmt"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/pa816859-hue/backlog-tier-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次健康检查，并更新全局的Redis健康状态。
// 缓存内容是可丢弃的，因此Redis重启后不需要任何重建操作，恢复连通即视为恢复。
func PerformCheck() {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	if err := database.RDB.Ping(ctx).Err(); err != nil {
		database.UpdateRedisStatus(false)
		return
	}
	database.UpdateRedisStatus(true)
}

// StartRedisHealthCheck 定期、阻塞式地执行健康检查，应在独立的Goroutine中运行。
// 它通过lifecycle.Handle参与优雅停机。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("Redis健康检查器已启动。")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			fmt.Println("Redis健康检查器已停止。")
			return
		}
		PerformCheck()
	}
}
