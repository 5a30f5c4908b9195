package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/laurel/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LeaderboardTTLDays, convey.ShouldEqual, 90)
				convey.So(cfg.SyncBatchSize, convey.ShouldEqual, 500)
				convey.So(cfg.RecommendationCacheTTLSeconds, convey.ShouldEqual, 300)
				convey.So(cfg.MaxRecommendationLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LAUREL_ADDR", ":8080")
			_ = os.Setenv("LAUREL_REDIS_ADDR", "localhost:6379")
			_ = os.Setenv("LAUREL_NEO4J_URI", "bolt://localhost:7687")
			_ = os.Setenv("LAUREL_SYNC_BATCH_SIZE", "100")
			_ = os.Setenv("LAUREL_MAX_RECOMMENDATION_LIMIT", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
				convey.So(cfg.Neo4jURI, convey.ShouldEqual, "bolt://localhost:7687")
				convey.So(cfg.SyncBatchSize, convey.ShouldEqual, 100)
				convey.So(cfg.MaxRecommendationLimit, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with invalid values", func() {
			_ = os.Setenv("LAUREL_SYNC_BATCH_SIZE", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"LAUREL_CONFIG",
		"LAUREL_ADDR",
		"LAUREL_REDIS_ADDR",
		"LAUREL_NEO4J_URI",
		"LAUREL_SYNC_BATCH_SIZE",
		"LAUREL_MAX_RECOMMENDATION_LIMIT",
	} {
		_ = os.Unsetenv(key)
	}
}
