package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hnpham/stockpile/internal/core/domain"
)

const collectionKeyPrefix = "collection:"

// RedisAdapter stores each collection as one JSON array under a single
// Redis key. Whole-value semantics: GET and SET, nothing in between.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetCollection(ctx context.Context, key string) ([]domain.Record, error) {
	raw, err := r.client.Get(ctx, collectionKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", key, err)
	}
	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (r *RedisAdapter) SetCollection(ctx context.Context, key string, records []domain.Record) error {
	if records == nil {
		records = []domain.Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	if err := r.client.Set(ctx, collectionKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping reports backend reachability, used by the health endpoint.
func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
