package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crypto-journal/internal/models"
	"github.com/redis/go-redis/v9"
)

const defaultStatsTTL = 30 * time.Second

// StatsCache caches computed trade statistics per user. Entries are written
// through on every ledger mutation and expire on a short TTL, so a cold
// cache only costs one recomputation.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates a new StatsCache
func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func statsKey(userID uint) string {
	return fmt.Sprintf("stats:%d", userID)
}

// Get returns the cached stats for a user, or (nil, false) on a miss.
// Redis errors are treated as misses.
func (c *StatsCache) Get(ctx context.Context, userID uint) (*models.TradeStats, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}

	var stats models.TradeStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set stores the stats for a user
func (c *StatsCache) Set(ctx context.Context, userID uint, stats *models.TradeStats) {
	if c == nil || c.rdb == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, statsKey(userID), data, c.ttl)
}

// Invalidate drops the cached stats for a user
func (c *StatsCache) Invalidate(ctx context.Context, userID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, statsKey(userID))
}
