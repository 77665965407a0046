package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const rankCacheKey = "rank:top"

// RankCacheRepo keeps a short-lived copy of the serialized leaderboard
// so a hot rank endpoint does not hit the aggregate query on every
// request. The payload is opaque to this layer.
type RankCacheRepo struct {
	client *goredis.Client
}

func NewRankCacheRepo(client *goredis.Client) *RankCacheRepo {
	return &RankCacheRepo{client: client}
}

// Get returns the cached payload, or nil on a miss.
func (r *RankCacheRepo) Get(ctx context.Context) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, rankCacheKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get rank cache: %w", err)
	}

	return payload, nil
}

func (r *RankCacheRepo) Set(ctx context.Context, payload []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(payload) == 0 || ttl <= 0 {
		return fmt.Errorf("invalid rank cache payload")
	}

	if err := r.client.Set(ctx, rankCacheKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set rank cache: %w", err)
	}

	return nil
}
