package database

import "testing"

func TestDropInsightCacheSkipsWhenRedisDown(t *testing.T) {
	UpdateRedisStatus(false)
	t.Cleanup(func() { UpdateRedisStatus(true) })

	// Redis不可用时必须安全地什么都不做，此时RDB甚至可能还是nil
	DropInsightCache()
}
