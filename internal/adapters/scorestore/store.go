// Package scorestore defines the ordered score store contract backing the
// leaderboards, and its Redis and in-memory implementations.
package scorestore

import (
	"context"
	"time"
)

// Entry is one (member, score) row of an ordered key.
type Entry struct {
	Member string
	Score  float64
}

// Store provides sorted-set access to named leaderboard keys. All orderings
// are by score descending; the in-memory implementation breaks ties by member
// ascending, Redis by its own lexicographic rule.
type Store interface {
	// IncrBy adds delta to the member's score, creating it at delta when
	// absent, and returns the resulting score.
	IncrBy(ctx context.Context, key, member string, delta float64) (float64, error)

	// Set overwrites the member's score, creating it when absent.
	Set(ctx context.Context, key, member string, score float64) error

	// Rank returns the 1-based descending rank of the member, or false when
	// the member is absent.
	Rank(ctx context.Context, key, member string) (int64, bool, error)

	// Score returns the member's score, or false when absent.
	Score(ctx context.Context, key, member string) (float64, bool, error)

	// Range returns entries at positions [start, stop] (0-based, inclusive)
	// in descending score order. stop == -1 means through the last entry.
	Range(ctx context.Context, key string, start, stop int64) ([]Entry, error)

	// Card returns the number of members under the key.
	Card(ctx context.Context, key string) (int64, error)

	// Remove deletes a single member. Removing an absent member is a no-op.
	Remove(ctx context.Context, key, member string) error

	// Clear deletes the key and every member under it.
	Clear(ctx context.Context, key string) error

	// Expire sets the key's time to live. The engines refresh it on every
	// write so only abandoned leaderboards age out.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Close releases the underlying connection, if any.
	Close() error
}
