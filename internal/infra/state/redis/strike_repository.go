package redisstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// strikeTTL bounds how long detections are remembered for a user.
const strikeTTL = 24 * time.Hour

// RedisStrikeRepository counts AI-content detections per user in Redis.
type RedisStrikeRepository struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStrikeRepository creates a RedisStrikeRepository.
func NewRedisStrikeRepository(client *redis.Client, keyPrefix string) *RedisStrikeRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStrikeRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "debate:"
	}
	return &RedisStrikeRepository{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStrikeRepository) strikeKey(roomID, userID string) string {
	return fmt.Sprintf("%sroom:%s:ai_strikes:%s", r.keyPrefix, roomID, userID)
}

// Increment bumps the counter and refreshes its TTL in one pipeline.
func (r *RedisStrikeRepository) Increment(ctx context.Context, roomID, userID string) (int64, error) {
	key := r.strikeKey(roomID, userID)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, strikeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis: failed to increment strikes on key %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Count returns 0 when the key is absent.
func (r *RedisStrikeRepository) Count(ctx context.Context, roomID, userID string) (int64, error) {
	key := r.strikeKey(roomID, userID)
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis: failed to read strikes from key %s: %w", key, err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: failed to parse strikes '%s' from key %s: %w", raw, key, err)
	}
	return n, nil
}
