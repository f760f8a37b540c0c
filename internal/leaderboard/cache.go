package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL 排行榜快照的缓存时长。榜单每天才更新一次，
// 缓存主要用来挡住同一天内的重复回源。
const DefaultCacheTTL = 6 * time.Hour

// Cache 排行榜摘要的 Redis 缓存，未配置 Redis 时退化为每次直接回源
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// GetOrLoad 先查缓存，未命中时回源拉取并回写缓存。
// 缓存读写失败都只打日志，不影响拉取结果。
func (c *Cache) GetOrLoad(ctx context.Context, f Fetcher, topN int) (*Summary, error) {
	cacheKey := fmt.Sprintf("leaderboard:%s:%d", f.Name(), topN)

	if c.rdb != nil {
		if bs, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached Summary
			if err := json.Unmarshal(bs, &cached); err == nil {
				log.Printf("leaderboard %s: cache hit", f.Name())
				return &cached, nil
			}
		}
	}

	summary, err := f.Summary(ctx, topN)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if bs, err := json.Marshal(summary); err == nil {
			if err := c.rdb.Set(ctx, cacheKey, bs, c.ttl).Err(); err != nil {
				log.Printf("leaderboard %s: cache write failed: %v", f.Name(), err)
			}
		}
	}
	return summary, nil
}
