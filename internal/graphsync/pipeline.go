// Package graphsync replicates the system of record into the property graph.
//
// Replication runs on two paths that must agree on projection rules: content
// events are applied as they happen, and a bulk resync rebuilds the whole
// graph from a stream over the record. Only published articles are projected;
// unpublishing an article removes its node.
package graphsync

import (
	"context"
	"time"

	"github.com/okian/laurel/internal/adapters/graphstore"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// defaultBatchSize bounds each streamed batch during a bulk resync.
const defaultBatchSize = 500

// Entity kind labels used in resync counters.
const (
	kindUsers    = "users"
	kindArticles = "articles"
	kindFollows  = "follows"
	kindLikes    = "likes"
)

// Counts reports how many entities of each kind a resync wrote successfully.
// Failed writes are logged and skipped, never counted.
type Counts struct {
	Users    int `json:"users"`
	Articles int `json:"articles"`
	Follows  int `json:"follows"`
	Likes    int `json:"likes"`
}

// Total sums the per-kind counters.
func (c Counts) Total() int {
	return c.Users + c.Articles + c.Follows + c.Likes
}

// Pipeline applies record changes to the graph store.
type Pipeline struct {
	graph  graphstore.Store
	source record.Source
	batch  int
	log    logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithBatchSize bounds resync batch sizes.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batch = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPipeline constructs the synchronization pipeline.
func NewPipeline(graph graphstore.Store, source record.Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		graph:  graph,
		source: source,
		batch:  defaultBatchSize,
		log:    logger.Get().Named("graphsync"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func graphUser(u record.User) graphstore.User {
	return graphstore.User{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Username: u.Username,
	}
}

func graphArticle(a record.Article) graphstore.Article {
	return graphstore.Article{
		ID:        a.ID,
		Title:     a.Title,
		Slug:      a.Slug,
		Status:    a.Status,
		AuthorID:  a.AuthorID,
		ViewCount: a.ViewCount,
		LikeCount: a.LikeCount,
	}
}

// UserSaved projects a created or updated user into the graph.
func (p *Pipeline) UserSaved(ctx context.Context, u record.User) error {
	if err := p.graph.UpsertUser(ctx, graphUser(u)); err != nil {
		metrics.RecordGraphWriteError("upsert_user")
		return err
	}
	metrics.RecordGraphWrite("upsert_user")
	return nil
}

// UserDeleted removes the user node and all of its edges.
func (p *Pipeline) UserDeleted(ctx context.Context, userID string) error {
	if err := p.graph.DeleteUser(ctx, userID); err != nil {
		metrics.RecordGraphWriteError("delete_user")
		return err
	}
	metrics.RecordGraphWrite("delete_user")
	return nil
}

// ArticleSaved projects a created or updated article. A published article is
// upserted with its taxonomy edges rebuilt; any other status removes the node
// so unpublished content can never surface in a traversal.
func (p *Pipeline) ArticleSaved(ctx context.Context, a record.Article) error {
	if !a.Published() {
		return p.ArticleDeleted(ctx, a.ID)
	}
	if err := p.graph.UpsertArticle(ctx, graphArticle(a)); err != nil {
		metrics.RecordGraphWriteError("upsert_article")
		return err
	}
	if err := p.graph.ReplaceArticleTopics(ctx, a.ID, a.Tags, a.Categories); err != nil {
		metrics.RecordGraphWriteError("replace_topics")
		return err
	}
	metrics.RecordGraphWrite("upsert_article")
	return nil
}

// ArticleDeleted removes the article node and all of its edges.
func (p *Pipeline) ArticleDeleted(ctx context.Context, articleID string) error {
	if err := p.graph.DeleteArticle(ctx, articleID); err != nil {
		metrics.RecordGraphWriteError("delete_article")
		return err
	}
	metrics.RecordGraphWrite("delete_article")
	return nil
}

// FollowCreated projects a new follow edge.
func (p *Pipeline) FollowCreated(ctx context.Context, followerID, followeeID string) error {
	if err := p.graph.UpsertFollow(ctx, followerID, followeeID); err != nil {
		metrics.RecordGraphWriteError("upsert_follow")
		return err
	}
	metrics.RecordGraphWrite("upsert_follow")
	return nil
}

// FollowDeleted removes a follow edge.
func (p *Pipeline) FollowDeleted(ctx context.Context, followerID, followeeID string) error {
	if err := p.graph.DeleteFollow(ctx, followerID, followeeID); err != nil {
		metrics.RecordGraphWriteError("delete_follow")
		return err
	}
	metrics.RecordGraphWrite("delete_follow")
	return nil
}

// LikeCreated projects a new like edge.
func (p *Pipeline) LikeCreated(ctx context.Context, userID, articleID string) error {
	if err := p.graph.UpsertLike(ctx, userID, articleID); err != nil {
		metrics.RecordGraphWriteError("upsert_like")
		return err
	}
	metrics.RecordGraphWrite("upsert_like")
	return nil
}

// LikeDeleted removes a like edge.
func (p *Pipeline) LikeDeleted(ctx context.Context, userID, articleID string) error {
	if err := p.graph.DeleteLike(ctx, userID, articleID); err != nil {
		metrics.RecordGraphWriteError("delete_like")
		return err
	}
	metrics.RecordGraphWrite("delete_like")
	return nil
}

// SyncFromDatabase clears the graph and rebuilds it from the record, in the
// order users, published articles, follows, likes so every edge's endpoints
// exist before the edge. Per-entity write failures are logged and skipped, so
// the returned counts are successes only; a failure in the record stream
// itself aborts and returns the error alongside the partial counts. An
// unavailable graph aborts up front with zero counts: its writes no-op, and
// counting no-ops as applied would report a sync that never happened.
func (p *Pipeline) SyncFromDatabase(ctx context.Context) (Counts, error) {
	start := time.Now()
	var counts Counts

	if !p.graph.Available(ctx) {
		metrics.RecordGraphUnavailable()
		p.log.Warn(ctx, "graph resync skipped: store unavailable")
		return counts, ErrGraphUnavailable
	}

	if err := p.graph.ClearAll(ctx); err != nil {
		return counts, err
	}

	err := p.source.Users(ctx, p.batch, func(rows []record.User) error {
		for _, u := range rows {
			if err := p.UserSaved(ctx, u); err != nil {
				p.log.Warn(ctx, "user projection failed",
					logger.String("user_id", u.ID), logger.Error(err))
				continue
			}
			counts.Users++
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	err = p.source.PublishedArticles(ctx, p.batch, func(rows []record.Article) error {
		for _, a := range rows {
			if err := p.ArticleSaved(ctx, a); err != nil {
				p.log.Warn(ctx, "article projection failed",
					logger.String("article_id", a.ID), logger.Error(err))
				continue
			}
			counts.Articles++
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	err = p.source.Follows(ctx, p.batch, func(rows []record.Follow) error {
		for _, f := range rows {
			if err := p.FollowCreated(ctx, f.FollowerID, f.FolloweeID); err != nil {
				p.log.Warn(ctx, "follow projection failed",
					logger.String("follower_id", f.FollowerID),
					logger.String("followee_id", f.FolloweeID), logger.Error(err))
				continue
			}
			counts.Follows++
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	err = p.source.Likes(ctx, p.batch, func(rows []record.Like) error {
		for _, l := range rows {
			if err := p.LikeCreated(ctx, l.UserID, l.ArticleID); err != nil {
				p.log.Warn(ctx, "like projection failed",
					logger.String("user_id", l.UserID),
					logger.String("article_id", l.ArticleID), logger.Error(err))
				continue
			}
			counts.Likes++
		}
		return nil
	})
	if err != nil {
		return counts, err
	}

	metrics.RecordGraphSyncEntities(kindUsers, counts.Users)
	metrics.RecordGraphSyncEntities(kindArticles, counts.Articles)
	metrics.RecordGraphSyncEntities(kindFollows, counts.Follows)
	metrics.RecordGraphSyncEntities(kindLikes, counts.Likes)
	p.log.Info(ctx, "graph resynced",
		logger.Int("users", counts.Users),
		logger.Int("articles", counts.Articles),
		logger.Int("follows", counts.Follows),
		logger.Int("likes", counts.Likes),
		logger.Duration("took", time.Since(start)))
	return counts, nil
}
