package scorestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/laurel/pkg/metrics"
)

// RedisStore implements Store over Redis sorted sets. All ordering and
// tie-breaking is whatever ZREVRANK/ZREVRANGE do; the engine treats that as
// an implementation detail of the underlying store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects a Store to the given Redis instance. The connection
// is lazy; the first command dials.
func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

// Ping verifies the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// observe records one Redis round trip on the score store latency histogram.
func observe(start time.Time) {
	metrics.RecordScoreStoreLatency(float64(time.Since(start).Milliseconds()))
}

// IncrBy implements Store.
func (s *RedisStore) IncrBy(ctx context.Context, key, member string, delta float64) (float64, error) {
	defer observe(time.Now())
	score, err := s.client.ZIncrBy(ctx, key, delta, member).Result()
	if err != nil {
		return 0, fmt.Errorf("zincrby %s: %w", key, err)
	}
	return score, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key, member string, score float64) error {
	defer observe(time.Now())
	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", key, err)
	}
	return nil
}

// Rank implements Store.
func (s *RedisStore) Rank(ctx context.Context, key, member string) (int64, bool, error) {
	defer observe(time.Now())
	pos, err := s.client.ZRevRank(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("zrevrank %s: %w", key, err)
	}
	return pos + 1, true, nil
}

// Score implements Store.
func (s *RedisStore) Score(ctx context.Context, key, member string) (float64, bool, error) {
	defer observe(time.Now())
	score, err := s.client.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("zscore %s: %w", key, err)
	}
	return score, true, nil
}

// Range implements Store.
func (s *RedisStore) Range(ctx context.Context, key string, start, stop int64) ([]Entry, error) {
	if start < 0 || (stop != -1 && stop < start) {
		return nil, ErrInvalidRange
	}
	defer observe(time.Now())
	rows, err := s.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	out := make([]Entry, 0, len(rows))
	for _, z := range rows {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		out = append(out, Entry{Member: member, Score: z.Score})
	}
	return out, nil
}

// Card implements Store.
func (s *RedisStore) Card(ctx context.Context, key string) (int64, error) {
	defer observe(time.Now())
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", key, err)
	}
	return n, nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key, member string) error {
	defer observe(time.Now())
	if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("zrem %s: %w", key, err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	defer observe(time.Now())
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Expire implements Store.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	defer observe(time.Now())
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
