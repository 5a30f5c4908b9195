package main

import (
	"context"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/graphstore"
	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/config"
	"github.com/okian/laurel/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestStoreSelection(t *testing.T) {
	convey.Convey("Given the bootstrap store builders", t, func() {
		ctx := context.Background()
		log := logger.Get()

		convey.Convey("When no backends are configured", func() {
			cfg := config.New()

			convey.Convey("Then both stores come up embedded", func() {
				scores := buildScoreStore(ctx, cfg, log)
				_, isMem := scores.(*scorestore.MemStore)
				convey.So(isMem, convey.ShouldBeTrue)

				graph := buildGraphStore(ctx, cfg, log)
				_, isMemGraph := graph.(*graphstore.MemGraph)
				convey.So(isMemGraph, convey.ShouldBeTrue)
				convey.So(graph.Available(ctx), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the embedded graph store is selected", func() {
			graph := buildGraphStore(ctx, config.New(), log)

			convey.Convey("Then it serves writes immediately", func() {
				err := graph.UpsertUser(ctx, graphstore.User{ID: "u1"})
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestTimeoutConstants(t *testing.T) {
	convey.Convey("Given the HTTP server timeouts", t, func() {
		convey.Convey("Then header reads are bounded tighter than bodies", func() {
			convey.So(readHeaderTimeout, convey.ShouldBeLessThan, readTimeout)
			convey.So(shutdownTimeout, convey.ShouldBeGreaterThan, time.Duration(0))
		})
	})
}
