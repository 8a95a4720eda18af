package startup

import (
	"fmt"

	"github.com/pa816859-hue/backlog-tier-backend/internal/game"
	"github.com/pa816859-hue/backlog-tier-backend/internal/ranking"
	"github.com/pa816859-hue/backlog-tier-backend/internal/session"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := game.PrimeDB(); err != nil {
		return err
	}
	if err := session.PrimeDB(); err != nil {
		return err
	}
	if err := ranking.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
