package insight

import (
	"encoding/json"
	"time"

	"github.com/pa816859-hue/backlog-tier-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// 缓存使用一个Redis Hash，键见 database.InsightCacheKey。
// Field: 洞察类别（含参数）
// Value: 对应summary结构体的JSON序列化字符串
// 写路径（game/session/settings）通过 database.DropInsightCache 使其失效。

// GetCachedPayload 从Redis缓存中获取一条洞察结果。
// 缓存未命中返回 (nil, nil)。
func GetCachedPayload(field string) ([]byte, error) {
	result, err := database.RDB.HGet(database.Ctx, database.InsightCacheKey, field).Result()
	if err == redis.Nil {
		return nil, nil // 缓存未命中，是正常情况，不返回错误
	}
	if err != nil {
		return nil, err
	}
	return []byte(result), nil
}

// SetCachedPayload 将一条洞察结果存入Redis缓存。
func SetCachedPayload(field string, payload any, expire time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// 使用Pipeline来原子地设置值和过期时间
	pipe := database.RDB.Pipeline()
	pipe.HSet(database.Ctx, database.InsightCacheKey, field, data)
	pipe.HExpire(database.Ctx, database.InsightCacheKey, expire, field)
	_, err = pipe.Exec(database.Ctx)
	return err
}
