package ranking_test

import (
	"context"
	"testing"

	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/ranking"
	"github.com/okian/laurel/internal/record"
	. "github.com/smartystreets/goconvey/convey"
)

// seedSource builds a small social graph:
//
//	u1 authors two published articles and has three followers
//	u2 follows u1 and has one follower
//	u3 and u4 only follow
func seedSource() *record.MemSource {
	source := record.NewMemSource()
	source.PutUser(record.User{ID: "u1", Name: "Ada", Username: "ada"})
	source.PutUser(record.User{ID: "u2", Name: "Ben", Username: "ben"})
	source.PutUser(record.User{ID: "u3", Name: "Cam", Username: "cam"})
	source.PutUser(record.User{ID: "u4", Name: "Dee", Username: "dee"})
	source.PutArticle(record.Article{ID: "a1", Status: "published", AuthorID: "u1", ViewCount: 40, LikeCount: 4})
	source.PutArticle(record.Article{ID: "a2", Status: "published", AuthorID: "u1", ViewCount: 10})
	source.PutFollow("u2", "u1")
	source.PutFollow("u3", "u1")
	source.PutFollow("u4", "u1")
	source.PutFollow("u3", "u2")
	source.SetCommentCount("u1", 5)
	return source
}

func TestUserEngine_Influence(t *testing.T) {
	Convey("Given the influence engine over a seeded graph", t, func() {
		ctx := context.Background()
		store := scorestore.NewMemStore()
		source := seedSource()
		engine := ranking.NewUserEngine(store, source)

		Convey("When scoring an active author", func() {
			score, err := engine.CalculateInfluenceScore(ctx, "u1")
			So(err, ShouldBeNil)

			Convey("Then every factor is weighed in", func() {
				// 3 followers x2 + 50 views x0.5 + 4 likes x1 + 5 comments x0.8 + 2 articles x1.5
				So(score, ShouldEqual, 42.0)
			})
		})

		Convey("When scoring a user nobody knows", func() {
			score, err := engine.CalculateInfluenceScore(ctx, "nobody")

			Convey("Then the score is zero, not an error", func() {
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 0.0)
			})
		})

		Convey("When asking for the factor breakdown", func() {
			breakdown, err := engine.InfluenceBreakdown(ctx, "u1")
			So(err, ShouldBeNil)

			Convey("Then contributions sum to the total", func() {
				var sum float64
				for _, f := range breakdown.Factors {
					sum += f.Contribution
				}
				So(sum, ShouldAlmostEqual, breakdown.Total, 0.01)
				So(breakdown.Total, ShouldEqual, 42.0)
			})
		})

		Convey("When a user is recalculated after gaining a follower", func() {
			_, err := engine.RecalculateUser(ctx, "u2")
			So(err, ShouldBeNil)
			source.PutFollow("u4", "u2")

			score, err := engine.RecalculateUser(ctx, "u2")
			So(err, ShouldBeNil)

			Convey("Then the stored score follows the record", func() {
				So(score, ShouldEqual, 4.0)

				stored, err := engine.UserScore(ctx, "u2")
				So(err, ShouldBeNil)
				So(stored, ShouldEqual, 4.0)
			})
		})
	})
}

func TestUserEngine_Leaderboard(t *testing.T) {
	Convey("Given a synced influence leaderboard", t, func() {
		ctx := context.Background()
		store := scorestore.NewMemStore()
		source := seedSource()
		engine := ranking.NewUserEngine(store, source, ranking.WithUserBatchSize(3))

		// A stale row the resync must wipe out.
		So(engine.UpdateScore(ctx, "ghost", 50), ShouldBeNil)

		written, err := engine.SyncFromDatabase(ctx)
		So(err, ShouldBeNil)
		So(written, ShouldEqual, 4)

		Convey("Then the resync is a full overwrite", func() {
			score, err := engine.UserScore(ctx, "ghost")
			So(err, ShouldBeNil)
			So(score, ShouldEqual, 0.0)

			_, ok, err := engine.UserRank(ctx, "ghost")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Then the board orders by score with id breaking ties", func() {
			top, err := engine.TopUsers(ctx, 10)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 4)
			So(top[0], ShouldResemble, ranking.UserRank{UserID: "u1", Score: 42.0})
			So(top[1], ShouldResemble, ranking.UserRank{UserID: "u2", Score: 2.0})
			So(top[2].UserID, ShouldEqual, "u3")
			So(top[3].UserID, ShouldEqual, "u4")
		})

		Convey("When a ranked profile is deleted from the record", func() {
			source.RemoveUser("u2")

			enriched, err := engine.EnrichedTopUsers(ctx, 2)
			So(err, ShouldBeNil)
			So(len(enriched), ShouldEqual, 2)

			Convey("Then the row keeps its rank and score with no profile", func() {
				So(enriched[0].User, ShouldNotBeNil)
				So(enriched[0].User.Name, ShouldEqual, "Ada")

				So(enriched[1].UserID, ShouldEqual, "u2")
				So(enriched[1].Score, ShouldEqual, 2.0)
				So(enriched[1].Rank, ShouldNotBeNil)
				So(*enriched[1].Rank, ShouldEqual, 2)
				So(enriched[1].User, ShouldBeNil)
			})
		})

		Convey("When asking for one user's enriched ranking", func() {
			row, err := engine.EnrichedUserRanking(ctx, "u1")
			So(err, ShouldBeNil)
			So(row.Score, ShouldEqual, 42.0)
			So(row.Rank, ShouldNotBeNil)
			So(*row.Rank, ShouldEqual, 1)
			So(row.User, ShouldNotBeNil)

			Convey("And an unranked stranger gets zeros, not errors", func() {
				row, err := engine.EnrichedUserRanking(ctx, "nobody")
				So(err, ShouldBeNil)
				So(row.Score, ShouldEqual, 0.0)
				So(row.Rank, ShouldBeNil)
				So(row.User, ShouldBeNil)
			})
		})

		Convey("When a user is removed from the board", func() {
			So(engine.RemoveUser(ctx, "u1"), ShouldBeNil)

			_, ok, err := engine.UserRank(ctx, "u1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			Convey("And the next user moves up", func() {
				rank, ok, err := engine.UserRank(ctx, "u2")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(rank, ShouldEqual, 1)
			})
		})

		Convey("When computing statistics", func() {
			stats, err := engine.Statistics(ctx)
			So(err, ShouldBeNil)

			Convey("Then the aggregate matches the board", func() {
				So(stats.TotalUsers, ShouldEqual, 4)
				So(stats.TotalScore, ShouldEqual, 44.0)
				So(stats.TopScore, ShouldEqual, 42.0)
				So(stats.AverageScore, ShouldEqual, 11.0)
			})
		})

		Convey("When the board is reset", func() {
			So(engine.ResetRanking(ctx), ShouldBeNil)

			top, err := engine.TopUsers(ctx, 10)
			So(err, ShouldBeNil)
			So(top, ShouldBeEmpty)
		})
	})
}

func TestUserEngine_DirectWrites(t *testing.T) {
	Convey("Given a fresh influence leaderboard", t, func() {
		ctx := context.Background()
		engine := ranking.NewUserEngine(scorestore.NewMemStore(), record.NewMemSource())

		Convey("When scores are written and nudged directly", func() {
			So(engine.UpdateScore(ctx, "u1", 10), ShouldBeNil)
			So(engine.IncrementScore(ctx, "u1", 2.5), ShouldBeNil)

			Convey("Then the stored score reflects both writes", func() {
				score, err := engine.UserScore(ctx, "u1")
				So(err, ShouldBeNil)
				So(score, ShouldEqual, 12.5)
			})
		})
	})
}
