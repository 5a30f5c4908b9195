package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if LAUREL_CONFIG is set
//  3. env (prefix LAUREL_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("LAUREL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LAUREL_ADDR, LAUREL_REDIS_ADDR, ...
	// Map env keys like LAUREL_SYNC_BATCH_SIZE -> sync_batch_size (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("LAUREL_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "laurel_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LeaderboardTTLDays <= 0:
		return fmt.Errorf("%w: leaderboard_ttl_days must be positive", ErrInvalidConfig)
	case c.SyncBatchSize <= 0:
		return fmt.Errorf("%w: sync_batch_size must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.MaxRecommendationLimit <= 0:
		return fmt.Errorf("%w: max_recommendation_limit must be positive", ErrInvalidConfig)
	case c.RecommendationCacheSize <= 0:
		return fmt.Errorf("%w: recommendation_cache_size must be positive", ErrInvalidConfig)
	}
	return nil
}
