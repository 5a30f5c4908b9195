// Package graphstore defines the property-graph store contract used for
// traversal-based recommendations, and its Neo4j and in-memory
// implementations.
//
// The graph holds User and Article nodes, Tag and Category attribute nodes,
// and AUTHORED, FOLLOWS, LIKES, HAS_TAG, IN_CATEGORY relationships. Only
// published articles are replicated in; the synchronization pipeline owns
// that rule.
package graphstore

import "context"

// User is the user node shape.
type User struct {
	ID       string
	Name     string
	Email    string
	Username string
}

// Article is the article node shape. Tags and Categories are replicated as
// HAS_TAG/IN_CATEGORY edges to attribute nodes.
type Article struct {
	ID        string
	Title     string
	Slug      string
	Status    string
	AuthorID  string
	ViewCount int64
	LikeCount int64
}

// SimilarUser is one similar-user traversal row.
type SimilarUser struct {
	ID              string
	Name            string
	Username        string
	SharedFollowees int64
}

// RelatedArticle is one related/recommended-article traversal row.
type RelatedArticle struct {
	ID        string
	Title     string
	Slug      string
	ViewCount int64
	Shared    int64
}

// InfluentialAuthor is one influential-author traversal row.
type InfluentialAuthor struct {
	ID        string
	Name      string
	Username  string
	Followers int64
	Articles  int64
}

// TopicKind discriminates tag rows from category rows.
type TopicKind string

// Topic kinds.
const (
	TopicTag      TopicKind = "tag"
	TopicCategory TopicKind = "category"
)

// Topic is one topic-affinity traversal row.
type Topic struct {
	Name         string
	Kind         TopicKind
	Interactions int64
}

// Statistics reports node and relationship counts.
type Statistics struct {
	Users      int64 `json:"users"`
	Articles   int64 `json:"articles"`
	Tags       int64 `json:"tags"`
	Categories int64 `json:"categories"`
	Authored   int64 `json:"authored"`
	Follows    int64 `json:"follows"`
	Likes      int64 `json:"likes"`
	HasTag     int64 `json:"has_tag"`
	InCategory int64 `json:"in_category"`
}

// Store provides node/edge maintenance and the traversal queries. A store
// that cannot reach its backend degrades: writes no-op and reads return
// empty results, never errors; Available reports which mode it is in.
type Store interface {
	// Available reports whether the backend is reachable, per the adapter's
	// probe policy.
	Available(ctx context.Context) bool

	// Node upserts are idempotent merge-by-id operations.
	UpsertUser(ctx context.Context, u User) error
	UpsertArticle(ctx context.Context, a Article) error

	// Node deletes cascade to every incident edge.
	DeleteUser(ctx context.Context, id string) error
	DeleteArticle(ctx context.Context, id string) error

	// ReplaceArticleTopics deletes the article's HAS_TAG and IN_CATEGORY
	// edges and recreates them from the given names, so removed taxonomy
	// never leaves stale edges behind.
	ReplaceArticleTopics(ctx context.Context, articleID string, tags, categories []string) error

	// Edge upserts/deletes are set-like: re-applying either is a no-op.
	UpsertFollow(ctx context.Context, followerID, followeeID string) error
	DeleteFollow(ctx context.Context, followerID, followeeID string) error
	UpsertLike(ctx context.Context, userID, articleID string) error
	DeleteLike(ctx context.Context, userID, articleID string) error

	// Traversal queries. Results never include the subject, and respect the
	// per-query exclusion rules (see each implementation).
	SimilarUsers(ctx context.Context, userID string, limit int) ([]SimilarUser, error)
	RelatedArticles(ctx context.Context, articleID string, limit int) ([]RelatedArticle, error)
	RecommendedArticles(ctx context.Context, userID string, limit int) ([]RelatedArticle, error)
	InfluentialAuthors(ctx context.Context, minFollowers int64, limit int) ([]InfluentialAuthor, error)
	TopicsOfInterest(ctx context.Context, userID string, limit int) ([]Topic, error)

	// Statistics reports node and relationship counts.
	Statistics(ctx context.Context) (Statistics, error)

	// ClearAll drops every node and relationship.
	ClearAll(ctx context.Context) error

	// Close releases the underlying connection, if any.
	Close(ctx context.Context) error
}
