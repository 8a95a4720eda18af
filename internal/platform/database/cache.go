package database

import "fmt"

// InsightCacheKey 是洞察结果缓存使用的Redis哈希键。
// 游戏或会话数据的写操作完成后应调用 DropInsightCache 使缓存失效。
const InsightCacheKey = "insight:cache"

// DropInsightCache 删除整个洞察缓存哈希，让下一次洞察请求重新计算。
// 尽力而为：Redis不可用时直接跳过，残留的缓存条目会随TTL自然过期。
func DropInsightCache() {
	if !IsRedisHealthy() {
		return
	}
	if err := RDB.Del(Ctx, InsightCacheKey).Err(); err != nil {
		fmt.Printf("警告: 清除洞察缓存失败: %v\n", err)
	}
}
