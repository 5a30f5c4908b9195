package record_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/laurel/internal/record"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemSource(t *testing.T) {
	Convey("Given a populated in-memory source", t, func() {
		ctx := context.Background()
		src := record.NewMemSource()

		src.PutUser(record.User{ID: "u1", Name: "Ada", Username: "ada"})
		src.PutUser(record.User{ID: "u2", Name: "Ben", Username: "ben"})
		src.PutUser(record.User{ID: "u3", Name: "Cal", Username: "cal"})
		src.PutArticle(record.Article{ID: "a1", AuthorID: "u1", Status: "published", ViewCount: 10, LikeCount: 2})
		src.PutArticle(record.Article{ID: "a2", AuthorID: "u1", Status: "draft", ViewCount: 99})
		src.PutFollow("u2", "u1")
		src.PutFollow("u3", "u1")
		src.PutLike("u2", "a1")
		src.SetCommentCount("u1", 5)

		Convey("When looking up users", func() {
			u, ok, err := src.FindUserByID(ctx, "u1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(u.Name, ShouldEqual, "Ada")

			_, ok, err = src.FindUserByID(ctx, "missing")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			Convey("Then bulk lookup skips unknown ids", func() {
				users, err := src.FindUsersByIDs(ctx, []string{"u1", "missing", "u2"})
				So(err, ShouldBeNil)
				So(len(users), ShouldEqual, 2)
			})
		})

		Convey("When computing author aggregates", func() {
			stats, err := src.AuthorStats(ctx, "u1")
			So(err, ShouldBeNil)

			Convey("Then only published articles count", func() {
				So(stats.Articles, ShouldEqual, 1)
				So(stats.TotalViews, ShouldEqual, 10)
				So(stats.TotalLikes, ShouldEqual, 2)
				So(stats.TotalComments, ShouldEqual, 5)
			})
		})

		Convey("When counting followers", func() {
			n, err := src.FollowerCount(ctx, "u1")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)

			ids, err := src.FollowingIDs(ctx, "u2")
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"u1"})
		})

		Convey("When streaming in batches", func() {
			var batches int
			var seen []string
			err := src.Users(ctx, 2, func(rows []record.User) error {
				batches++
				So(len(rows), ShouldBeLessThanOrEqualTo, 2)
				for _, u := range rows {
					seen = append(seen, u.ID)
				}
				return nil
			})
			So(err, ShouldBeNil)

			Convey("Then every user appears once, in id order", func() {
				So(batches, ShouldEqual, 2)
				So(seen, ShouldResemble, []string{"u1", "u2", "u3"})
			})
		})

		Convey("When streaming published articles", func() {
			var seen []string
			err := src.PublishedArticles(ctx, 10, func(rows []record.Article) error {
				for _, a := range rows {
					seen = append(seen, a.ID)
				}
				return nil
			})
			So(err, ShouldBeNil)

			Convey("Then drafts are filtered out", func() {
				So(seen, ShouldResemble, []string{"a1"})
			})
		})

		Convey("When the batch callback fails", func() {
			boom := errors.New("boom")
			err := src.Users(ctx, 1, func([]record.User) error { return boom })

			Convey("Then iteration stops with the callback error", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}
