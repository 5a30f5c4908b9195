// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisAddr points the score store at a Redis instance; empty selects the
	// embedded in-memory store.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// Neo4jURI points the graph store at a Neo4j instance; empty selects the
	// embedded in-memory graph.
	Neo4jURI      string `koanf:"neo4j_uri"`
	Neo4jUser     string `koanf:"neo4j_user"`
	Neo4jPassword string `koanf:"neo4j_password"`

	// LeaderboardTTLDays sets the expiration refreshed on every leaderboard write.
	LeaderboardTTLDays int `koanf:"leaderboard_ttl_days"`

	// MaxLeaderboardLimit caps leaderboard read limits.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SyncBatchSize bounds per-batch rows streamed during full resyncs.
	SyncBatchSize int `koanf:"sync_batch_size"`

	// RecommendationCacheTTLSeconds sets the recommendation cache entry TTL.
	RecommendationCacheTTLSeconds int `koanf:"recommendation_cache_ttl_seconds"`

	// RecommendationCacheSize bounds the recommendation cache entry count.
	RecommendationCacheSize int `koanf:"recommendation_cache_size"`

	// MaxRecommendationLimit caps per-query recommendation limits.
	MaxRecommendationLimit int `koanf:"max_recommendation_limit"`

	// MinInfluentialFollowers is the default follower threshold for the
	// influential-authors query.
	MinInfluentialFollowers int `koanf:"min_influential_followers"`

	// ResyncIntervalMinutes schedules periodic full resyncs; 0 disables them.
	ResyncIntervalMinutes int `koanf:"resync_interval_minutes"`

	// GraphReprobeSeconds re-checks a failed graph store after this interval;
	// 0 keeps the probe-once-per-instance behavior.
	GraphReprobeSeconds int `koanf:"graph_reprobe_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                      "info",
		Addr:                          ":9080",
		RedisDB:                       0,
		Neo4jUser:                     "neo4j",
		LeaderboardTTLDays:            90,
		MaxLeaderboardLimit:           100,
		SyncBatchSize:                 500,
		RecommendationCacheTTLSeconds: 300,
		RecommendationCacheSize:       4096,
		MaxRecommendationLimit:        25,
		MinInfluentialFollowers:       10,
		ResyncIntervalMinutes:         60,
		GraphReprobeSeconds:           0,
	}
}
