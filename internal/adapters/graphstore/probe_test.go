package graphstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/graphstore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProber(t *testing.T) {
	Convey("Given a liveness probe", t, func() {
		ctx := context.Background()

		Convey("When the backend is healthy", func() {
			calls := 0
			p := graphstore.NewProber(func(context.Context) error {
				calls++
				return nil
			})

			Convey("Then success is memoized for the instance's lifetime", func() {
				So(p.State(), ShouldEqual, graphstore.Unprobed)
				So(p.Available(ctx), ShouldBeTrue)
				So(p.Available(ctx), ShouldBeTrue)
				So(calls, ShouldEqual, 1)
				So(p.State(), ShouldEqual, graphstore.Available)
			})
		})

		Convey("When the backend is down and no re-probe interval is set", func() {
			calls := 0
			p := graphstore.NewProber(func(context.Context) error {
				calls++
				return errors.New("connection refused")
			})

			Convey("Then the failure is memoized and never re-checked", func() {
				So(p.Available(ctx), ShouldBeFalse)
				So(p.Available(ctx), ShouldBeFalse)
				So(calls, ShouldEqual, 1)
				So(p.State(), ShouldEqual, graphstore.Unavailable)
			})

			Convey("And Reset forces a fresh probe", func() {
				So(p.Available(ctx), ShouldBeFalse)
				p.Reset()
				So(p.State(), ShouldEqual, graphstore.Unprobed)
				So(p.Available(ctx), ShouldBeFalse)
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When a re-probe interval is configured", func() {
			now := time.Unix(1_700_000_000, 0)
			healthy := false
			calls := 0
			p := graphstore.NewProber(
				func(context.Context) error {
					calls++
					if healthy {
						return nil
					}
					return errors.New("connection refused")
				},
				graphstore.WithReprobeInterval(time.Minute),
				graphstore.WithProbeClock(func() time.Time { return now }),
			)

			So(p.Available(ctx), ShouldBeFalse)

			Convey("Then failures inside the interval are served from memory", func() {
				now = now.Add(30 * time.Second)
				So(p.Available(ctx), ShouldBeFalse)
				So(calls, ShouldEqual, 1)
			})

			Convey("Then a restored backend is picked up after the interval", func() {
				healthy = true
				now = now.Add(2 * time.Minute)
				So(p.Available(ctx), ShouldBeTrue)
				So(calls, ShouldEqual, 2)

				Convey("And success is memoized from then on", func() {
					now = now.Add(24 * time.Hour)
					So(p.Available(ctx), ShouldBeTrue)
					So(calls, ShouldEqual, 2)
				})
			})
		})
	})
}
