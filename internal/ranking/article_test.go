package ranking_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/ranking"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// failingStore wraps a Store and fails every write.
type failingStore struct {
	scorestore.Store
}

func (f *failingStore) IncrBy(context.Context, string, string, float64) (float64, error) {
	return 0, context.DeadlineExceeded
}

func TestArticleEngine_Views(t *testing.T) {
	Convey("Given an article ranking engine", t, func() {
		ctx := context.Background()
		store := scorestore.NewMemStore()
		source := record.NewMemSource()
		engine := ranking.NewArticleEngine(store, source)

		Convey("When an article is viewed three times", func() {
			for i := 0; i < 3; i++ {
				engine.IncrementView(ctx, "a1", 1)
			}

			Convey("Then its score is 3 and it ranks first", func() {
				score, err := engine.ArticleScore(ctx, "a1")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 3.0)

				rank, ok, err := engine.ArticleRank(ctx, "a1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(rank, ShouldEqual, 1)
			})
		})

		Convey("When an article was never viewed", func() {
			score, err := engine.ArticleScore(ctx, "ghost")
			So(err, ShouldBeNil)

			Convey("Then its score is zero, not an error", func() {
				So(score, ShouldEqual, 0.0)
			})

			Convey("And it has no rank", func() {
				_, ok, err := engine.ArticleRank(ctx, "ghost")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the store rejects the increment", func() {
			broken := ranking.NewArticleEngine(&failingStore{Store: store}, source)

			Convey("Then the view update is dropped silently", func() {
				So(func() { broken.IncrementView(ctx, "a1", 1) }, ShouldNotPanic)
			})
		})

		Convey("When reading the top of the board", func() {
			engine.IncrementView(ctx, "a1", 5)
			engine.IncrementView(ctx, "a2", 9)
			engine.IncrementView(ctx, "a3", 2)

			top, err := engine.TopArticles(ctx, 2)
			So(err, ShouldBeNil)

			Convey("Then it is limited and descending", func() {
				So(len(top), ShouldEqual, 2)
				So(top[0].ArticleID, ShouldEqual, "a2")
				So(top[1].ArticleID, ShouldEqual, "a1")
			})
		})
	})
}

func TestArticleEngine_Sync(t *testing.T) {
	Convey("Given articles in the system of record", t, func() {
		ctx := context.Background()
		store := scorestore.NewMemStore()
		source := record.NewMemSource()
		source.PutArticle(record.Article{ID: "a1", Status: "published", ViewCount: 40})
		source.PutArticle(record.Article{ID: "a2", Status: "published", ViewCount: 15})
		source.PutArticle(record.Article{ID: "a3", Status: "published", ViewCount: 0})
		source.PutArticle(record.Article{ID: "a4", Status: "draft", ViewCount: 500})
		engine := ranking.NewArticleEngine(store, source, ranking.WithArticleBatchSize(2))

		Convey("When the board has drifted via live increments", func() {
			engine.IncrementView(ctx, "a1", 3)
			engine.IncrementView(ctx, "stale", 7)

			written, err := engine.SyncFromDatabase(ctx)
			So(err, ShouldBeNil)

			Convey("Then the resync is a full overwrite of the drift", func() {
				So(written, ShouldEqual, 2) // a3 has no views, a4 is a draft

				score, err := engine.ArticleScore(ctx, "a1")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 40.0)

				score, err = engine.ArticleScore(ctx, "stale")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 0.0)
			})

			Convey("And running it again changes nothing", func() {
				before, err := engine.TopArticles(ctx, 10)
				So(err, ShouldBeNil)

				_, err = engine.SyncFromDatabase(ctx)
				So(err, ShouldBeNil)

				after, err := engine.TopArticles(ctx, 10)
				So(err, ShouldBeNil)
				So(after, ShouldResemble, before)
			})
		})

		Convey("When computing statistics", func() {
			_, err := engine.SyncFromDatabase(ctx)
			So(err, ShouldBeNil)

			stats, err := engine.Statistics(ctx)
			So(err, ShouldBeNil)

			Convey("Then totals reflect the board", func() {
				So(stats.TotalArticles, ShouldEqual, 2)
				So(stats.TotalViews, ShouldEqual, 55.0)
				So(stats.TopScore, ShouldEqual, 40.0)
			})
		})
	})
}

func TestArticleEngine_Expiration(t *testing.T) {
	Convey("Given an engine with a short board TTL", t, func() {
		ctx := context.Background()
		now := time.Unix(1_700_000_000, 0)
		store := scorestore.NewMemStore(scorestore.WithClock(func() time.Time { return now }))
		engine := ranking.NewArticleEngine(store, record.NewMemSource(),
			ranking.WithArticleTTL(time.Hour))

		engine.IncrementView(ctx, "a1", 1)

		Convey("When writes keep arriving", func() {
			now = now.Add(45 * time.Minute)
			engine.IncrementView(ctx, "a1", 1)
			now = now.Add(45 * time.Minute)

			Convey("Then the refreshed board survives", func() {
				score, err := engine.ArticleScore(ctx, "a1")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 2.0)
			})
		})

		Convey("When the board goes idle past the TTL", func() {
			now = now.Add(2 * time.Hour)

			Convey("Then it silently disappears", func() {
				score, err := engine.ArticleScore(ctx, "a1")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 0.0)

				stats, err := engine.Statistics(ctx)
				So(err, ShouldBeNil)
				So(stats.TotalArticles, ShouldEqual, 0)
			})
		})
	})
}
