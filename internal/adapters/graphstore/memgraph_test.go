package graphstore_test

import (
	"context"
	"testing"

	"github.com/okian/laurel/internal/adapters/graphstore"
	. "github.com/smartystreets/goconvey/convey"
)

// seedGraph builds a small content graph:
//
//	users u1..u5; u1 follows u2,u3; u4 follows u2,u3; u5 follows u2; u2 follows u1
//	articles a1 (by u2, tags go,web), a2 (by u2, tags go), a3 (by u3, tag web,
//	category news), a4 (by u3, category news)
//	u1 likes a1; u5 likes a1,a3
func seedGraph(ctx context.Context) *graphstore.MemGraph {
	g := graphstore.NewMemGraph()
	for _, u := range []graphstore.User{
		{ID: "u1", Name: "Ada", Username: "ada"},
		{ID: "u2", Name: "Ben", Username: "ben"},
		{ID: "u3", Name: "Cal", Username: "cal"},
		{ID: "u4", Name: "Dee", Username: "dee"},
		{ID: "u5", Name: "Eli", Username: "eli"},
	} {
		_ = g.UpsertUser(ctx, u)
	}
	_ = g.UpsertArticle(ctx, graphstore.Article{ID: "a1", Title: "Go I", AuthorID: "u2", ViewCount: 100})
	_ = g.UpsertArticle(ctx, graphstore.Article{ID: "a2", Title: "Go II", AuthorID: "u2", ViewCount: 50})
	_ = g.UpsertArticle(ctx, graphstore.Article{ID: "a3", Title: "Web", AuthorID: "u3", ViewCount: 80})
	_ = g.UpsertArticle(ctx, graphstore.Article{ID: "a4", Title: "News", AuthorID: "u3", ViewCount: 10})
	_ = g.ReplaceArticleTopics(ctx, "a1", []string{"go", "web"}, nil)
	_ = g.ReplaceArticleTopics(ctx, "a2", []string{"go"}, nil)
	_ = g.ReplaceArticleTopics(ctx, "a3", []string{"web"}, []string{"news"})
	_ = g.ReplaceArticleTopics(ctx, "a4", nil, []string{"news"})
	for _, f := range [][2]string{
		{"u1", "u2"}, {"u1", "u3"},
		{"u4", "u2"}, {"u4", "u3"},
		{"u5", "u2"},
		{"u2", "u1"},
	} {
		_ = g.UpsertFollow(ctx, f[0], f[1])
	}
	_ = g.UpsertLike(ctx, "u1", "a1")
	_ = g.UpsertLike(ctx, "u5", "a1")
	_ = g.UpsertLike(ctx, "u5", "a3")
	return g
}

func TestMemGraph_SimilarUsers(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When querying users similar to u1", func() {
			rows, err := g.SimilarUsers(ctx, "u1", 10)
			So(err, ShouldBeNil)

			Convey("Then co-followers rank by shared follow-targets", func() {
				// u4 shares {u2,u3}; u5 shares {u2}. u2 and u3 are already
				// followed by u1 and must not appear; u1 itself must not.
				So(len(rows), ShouldEqual, 2)
				So(rows[0].ID, ShouldEqual, "u4")
				So(rows[0].SharedFollowees, ShouldEqual, 2)
				So(rows[1].ID, ShouldEqual, "u5")
				So(rows[1].SharedFollowees, ShouldEqual, 1)
			})

			Convey("Then the subject is never included", func() {
				for _, r := range rows {
					So(r.ID, ShouldNotEqual, "u1")
				}
			})
		})

		Convey("When the limit is smaller than the candidate set", func() {
			rows, err := g.SimilarUsers(ctx, "u1", 1)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0].ID, ShouldEqual, "u4")
		})

		Convey("When the subject follows nobody", func() {
			rows, err := g.SimilarUsers(ctx, "u3", 10)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})
}

func TestMemGraph_RelatedArticles(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When querying articles related to a1 (tags go, web)", func() {
			rows, err := g.RelatedArticles(ctx, "a1", 10)
			So(err, ShouldBeNil)

			Convey("Then overlap count ranks first, view count breaks ties", func() {
				// a2 shares {go}, a3 shares {web}; equal overlap, a1 is
				// excluded, a3 has more views than a2.
				So(len(rows), ShouldEqual, 2)
				So(rows[0].ID, ShouldEqual, "a3")
				So(rows[0].Shared, ShouldEqual, 1)
				So(rows[1].ID, ShouldEqual, "a2")
			})
		})

		Convey("When tags are removed and re-derived", func() {
			_ = g.ReplaceArticleTopics(ctx, "a2", []string{"history"}, nil)
			rows, err := g.RelatedArticles(ctx, "a1", 10)
			So(err, ShouldBeNil)

			Convey("Then stale edges no longer contribute", func() {
				So(len(rows), ShouldEqual, 1)
				So(rows[0].ID, ShouldEqual, "a3")
			})
		})
	})
}

func TestMemGraph_RecommendedArticles(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When recommending for u1 (liked a1: tags go, web)", func() {
			rows, err := g.RecommendedArticles(ctx, "u1", 10)
			So(err, ShouldBeNil)

			Convey("Then liked articles are excluded and overlap ranks", func() {
				So(len(rows), ShouldEqual, 2)
				for _, r := range rows {
					So(r.ID, ShouldNotEqual, "a1")
				}
				So(rows[0].ID, ShouldEqual, "a3") // shares web, 80 views
				So(rows[1].ID, ShouldEqual, "a2") // shares go, 50 views
			})
		})

		Convey("When the user liked nothing", func() {
			rows, err := g.RecommendedArticles(ctx, "u3", 10)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})
}

func TestMemGraph_InfluentialAuthors(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When querying authors with at least 2 followers", func() {
			rows, err := g.InfluentialAuthors(ctx, 2, 10)
			So(err, ShouldBeNil)

			Convey("Then followers rank first, article count breaks ties", func() {
				// u2 has 3 followers, u3 has 2. Both authored 2 articles.
				So(len(rows), ShouldEqual, 2)
				So(rows[0].ID, ShouldEqual, "u2")
				So(rows[0].Followers, ShouldEqual, 3)
				So(rows[0].Articles, ShouldEqual, 2)
				So(rows[1].ID, ShouldEqual, "u3")
			})
		})

		Convey("When the threshold excludes everyone", func() {
			rows, err := g.InfluentialAuthors(ctx, 100, 10)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})
}

func TestMemGraph_TopicsOfInterest(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When querying topics for u5 (liked a1 and a3)", func() {
			rows, err := g.TopicsOfInterest(ctx, "u5", 10)
			So(err, ShouldBeNil)

			Convey("Then tags and categories merge into one ranked list", func() {
				// web appears on a1 and a3 (2 interactions); go on a1; news
				// (category) on a3.
				So(len(rows), ShouldEqual, 3)
				So(rows[0].Name, ShouldEqual, "web")
				So(rows[0].Interactions, ShouldEqual, 2)
				So(rows[1].Name, ShouldEqual, "go")
				So(rows[1].Kind, ShouldEqual, graphstore.TopicTag)
				So(rows[2].Name, ShouldEqual, "news")
				So(rows[2].Kind, ShouldEqual, graphstore.TopicCategory)
			})
		})

		Convey("When the limit is applied before and after the merge", func() {
			rows, err := g.TopicsOfInterest(ctx, "u5", 2)
			So(err, ShouldBeNil)

			Convey("Then the merged list is truncated post-merge", func() {
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Name, ShouldEqual, "web")
				So(rows[1].Name, ShouldEqual, "go")
			})
		})
	})
}

func TestMemGraph_CascadeAndStatistics(t *testing.T) {
	Convey("Given the seeded graph", t, func() {
		ctx := context.Background()
		g := seedGraph(ctx)

		Convey("When deleting an article", func() {
			So(g.DeleteArticle(ctx, "a1"), ShouldBeNil)

			Convey("Then no traversal reaches it anymore", func() {
				related, err := g.RelatedArticles(ctx, "a2", 10)
				So(err, ShouldBeNil)
				for _, r := range related {
					So(r.ID, ShouldNotEqual, "a1")
				}

				recs, err := g.RecommendedArticles(ctx, "u1", 10)
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty) // u1's only like cascaded away

				topics, err := g.TopicsOfInterest(ctx, "u1", 10)
				So(err, ShouldBeNil)
				So(topics, ShouldBeEmpty)
			})

			Convey("Then edge counts drop with the node", func() {
				stats, err := g.Statistics(ctx)
				So(err, ShouldBeNil)
				So(stats.Articles, ShouldEqual, 3)
				So(stats.Likes, ShouldEqual, 1) // only u5 -> a3 remains
			})
		})

		Convey("When deleting a user", func() {
			So(g.DeleteUser(ctx, "u2"), ShouldBeNil)

			Convey("Then follow edges in both directions are gone", func() {
				stats, err := g.Statistics(ctx)
				So(err, ShouldBeNil)
				So(stats.Users, ShouldEqual, 4)
				So(stats.Follows, ShouldEqual, 2) // u1->u3, u4->u3
			})

			Convey("Then authored edges are detached", func() {
				rows, err := g.InfluentialAuthors(ctx, 1, 10)
				So(err, ShouldBeNil)
				for _, r := range rows {
					So(r.ID, ShouldNotEqual, "u2")
				}
			})
		})

		Convey("When reporting statistics", func() {
			stats, err := g.Statistics(ctx)
			So(err, ShouldBeNil)

			Convey("Then node and edge counts match the seed", func() {
				So(stats.Users, ShouldEqual, 5)
				So(stats.Articles, ShouldEqual, 4)
				So(stats.Tags, ShouldEqual, 2) // go, web
				So(stats.Categories, ShouldEqual, 1)
				So(stats.Authored, ShouldEqual, 4)
				So(stats.Follows, ShouldEqual, 6)
				So(stats.Likes, ShouldEqual, 3)
				So(stats.HasTag, ShouldEqual, 4)
				So(stats.InCategory, ShouldEqual, 2)
			})
		})

		Convey("When clearing the graph", func() {
			So(g.ClearAll(ctx), ShouldBeNil)
			stats, err := g.Statistics(ctx)
			So(err, ShouldBeNil)
			So(stats, ShouldResemble, graphstore.Statistics{})
		})
	})
}
