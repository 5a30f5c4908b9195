// Package record defines read contracts against the system of record.
//
// The content platform's CRUD layer owns users, articles, follows, and likes.
// The ranking and graph subsystems only ever read them, either point lookups
// for a single entity or streamed batches for full resyncs, so the contract
// here is read-only by construction.
package record

import (
	"context"
	"time"
)

// ArticleStatusPublished is the only status replicated into the graph and
// counted by the rankings.
const ArticleStatusPublished = "published"

// User is a user profile row.
type User struct {
	ID       string
	Name     string
	Email    string
	Username string
	Avatar   string
	Bio      string
	JoinedAt time.Time
}

// Article is an article row. Tags and Categories carry the taxonomy names
// attached to the article.
type Article struct {
	ID         string
	Title      string
	Slug       string
	Status     string
	AuthorID   string
	ViewCount  int64
	LikeCount  int64
	Tags       []string
	Categories []string
}

// Published reports whether the article is visible to readers.
func (a Article) Published() bool {
	return a.Status == ArticleStatusPublished
}

// Follow is a follower -> followee edge row.
type Follow struct {
	FollowerID string
	FolloweeID string
}

// Like is a user -> article like row.
type Like struct {
	UserID    string
	ArticleID string
}

// AuthorStats aggregates per-author article activity.
type AuthorStats struct {
	Articles      int64
	TotalViews    int64
	TotalLikes    int64
	TotalComments int64
}

// Source provides read access to the system of record.
//
// The streaming methods invoke fn with successive batches of at most batch
// rows; iteration stops on the first fn error, which is returned unwrapped so
// callers can abort a resync mid-stream.
type Source interface {
	// FindUserByID returns the user and true, or a zero user and false when
	// the id is unknown.
	FindUserByID(ctx context.Context, id string) (User, bool, error)

	// FindUsersByIDs bulk-loads profiles for the given ids. Unknown ids are
	// simply absent from the result map.
	FindUsersByIDs(ctx context.Context, ids []string) (map[string]User, error)

	// FollowerCount returns the number of users following the given user.
	FollowerCount(ctx context.Context, userID string) (int64, error)

	// FollowingIDs returns the ids the given user follows.
	FollowingIDs(ctx context.Context, userID string) ([]string, error)

	// AuthorStats returns aggregate article activity for an author. A user
	// with no articles yields zero stats, not an error.
	AuthorStats(ctx context.Context, userID string) (AuthorStats, error)

	// Users streams every user in batches.
	Users(ctx context.Context, batch int, fn func([]User) error) error

	// PublishedArticles streams every published article in batches.
	PublishedArticles(ctx context.Context, batch int, fn func([]Article) error) error

	// Follows streams every follow edge in batches.
	Follows(ctx context.Context, batch int, fn func([]Follow) error) error

	// Likes streams every like edge in batches.
	Likes(ctx context.Context, batch int, fn func([]Like) error) error
}
