package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/entity"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/domain/repository"
)

// KeyPrefix namespaces analysis results in Redis
const KeyPrefix = "analysis:"

type resultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a Redis-backed result cache
func NewResultCache(client *redis.Client, ttl time.Duration) repository.ResultCache {
	return &resultCache{client: client, ttl: ttl}
}

// Key returns the Redis key for an image digest
func Key(digest string) string {
	return KeyPrefix + digest
}

func (c *resultCache) Get(ctx context.Context, digest string) (*entity.AnalysisResult, error) {
	data, err := c.client.Get(ctx, Key(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var result entity.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	result.Cached = true
	return &result, nil
}

func (c *resultCache) Set(ctx context.Context, digest string, result *entity.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(digest), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
