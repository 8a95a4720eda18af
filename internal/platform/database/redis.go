package database

import (
	"context"
	"fmt"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接
// Redis在本项目中只承载洞察结果缓存，连接失败时降级为无缓存运行，而不是panic
func InitRedis(cfg config.RedisConfig) {
	// 创建一个新的Redis客户端
	// 使用从配置文件加载的参数
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	_, err := RDB.Ping(Ctx).Result()
	if err != nil {
		fmt.Printf("警告: 无法连接到Redis (%v)，洞察缓存将不可用。\n", err)
		MarkRedisUnhealthy()
		return
	}

	fmt.Println("Redis 连接成功！")
}
