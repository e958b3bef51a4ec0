package redis

import (
	"context"
	"encoding/json"
	"time"

	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/usecase"
)

var _ usecase.StatsCache = (*StatsCache)(nil)

// StatsCache keeps per-user statistics hot between writes. Cache failures are
// swallowed: a miss just means the caller recomputes from the store.
type StatsCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewStatsCache(client RedisClient, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		ttl:    ttl,
	}
}

func statsKey(userID string) string { return "user_stats:" + userID }

func (c *StatsCache) Get(ctx context.Context, userID string) (*model.SubscriptionStats, bool) {
	data, err := c.client.Get(ctx, statsKey(userID))
	if err != nil {
		return nil, false
	}

	var stats model.SubscriptionStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, userID string, stats *model.SubscriptionStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, statsKey(userID), data, c.ttl)
}

func (c *StatsCache) Invalidate(ctx context.Context, userID string) {
	_ = c.client.Del(ctx, statsKey(userID))
}
