// Package recommender answers recommendation queries from the property graph,
// fronted by a TTL cache.
//
// Queries never fail: an unreachable graph or a broken traversal degrades to
// an explicitly empty, metadata-tagged envelope, and the caller keeps going.
package recommender

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/okian/laurel/internal/adapters/graphstore"
	"github.com/okian/laurel/internal/domain/recommend"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// Engine defaults, overridable per option.
const (
	defaultCacheSize    = 4096
	defaultCacheTTL     = 5 * time.Minute
	defaultLimit        = 10
	defaultMaxLimit     = 25
	defaultMinFollowers = 10
)

// Degradation reasons carried in result metadata.
const (
	reasonGraphUnavailable = "graph_unavailable"
	reasonQueryFailed      = "query_failed"
)

// Engine serves the five recommendation query types.
type Engine struct {
	graph        graphstore.Store
	cache        *expirable.LRU[string, recommend.Result]
	cacheSize    int
	cacheTTL     time.Duration
	maxLimit     int
	minFollowers int64
	log          logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCacheSize bounds the number of cached results.
func WithCacheSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.cacheSize = n
		}
	}
}

// WithCacheTTL sets how long a cached result stays fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.cacheTTL = ttl
		}
	}
}

// WithMaxLimit caps the per-query result size.
func WithMaxLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLimit = n
		}
	}
}

// WithMinFollowers sets the influential-author follower threshold.
func WithMinFollowers(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minFollowers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine constructs the recommendation engine.
func NewEngine(graph graphstore.Store, opts ...Option) *Engine {
	e := &Engine{
		graph:        graph,
		cacheSize:    defaultCacheSize,
		cacheTTL:     defaultCacheTTL,
		maxLimit:     defaultMaxLimit,
		minFollowers: defaultMinFollowers,
		log:          logger.Get().Named("recommender"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = expirable.NewLRU[string, recommend.Result](e.cacheSize, nil, e.cacheTTL)
	return e
}

// clampLimit normalizes a caller-supplied limit into [1, maxLimit].
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	return limit
}

func cacheKey(kind recommend.Kind, subjectID string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", kind, subjectID, limit)
}

// lookup runs one query through the cache/availability/traversal flow shared
// by every kind. Degraded results are never cached, so a recovered graph is
// visible on the next call.
func (e *Engine) lookup(ctx context.Context, kind recommend.Kind, subjectID string, limit int,
	run func(ctx context.Context, limit int) ([]recommend.Item, error)) recommend.Result {

	metrics.RecordRecommendationRequest(string(kind))
	limit = e.clampLimit(limit)
	key := cacheKey(kind, subjectID, limit)

	if cached, ok := e.cache.Get(key); ok {
		metrics.RecordRecommendationCacheHit(string(kind))
		return cached
	}
	metrics.RecordRecommendationCacheMiss(string(kind))

	if !e.graph.Available(ctx) {
		metrics.RecordGraphUnavailable()
		metrics.RecordRecommendationEmpty(string(kind))
		return recommend.Empty(kind, reasonGraphUnavailable)
	}

	start := time.Now()
	items, err := run(ctx, limit)
	metrics.RecordGraphQueryLatency(string(kind), float64(time.Since(start).Milliseconds()))
	if err != nil {
		e.log.Warn(ctx, "recommendation traversal failed",
			logger.String("kind", string(kind)),
			logger.String("subject_id", subjectID),
			logger.Error(err))
		metrics.RecordErrorByComponent("recommender", string(kind))
		metrics.RecordRecommendationEmpty(string(kind))
		return recommend.Empty(kind, reasonQueryFailed)
	}

	result := recommend.New(kind, items)
	if result.IsEmpty() {
		metrics.RecordRecommendationEmpty(string(kind))
	}
	e.cache.Add(key, result)
	return result
}

// SimilarUsers recommends users who follow the same people the subject
// follows, excluding the subject and anyone already followed.
func (e *Engine) SimilarUsers(ctx context.Context, userID string, limit int) recommend.Result {
	result := e.lookup(ctx, recommend.KindSimilarUsers, userID, limit,
		func(ctx context.Context, limit int) ([]recommend.Item, error) {
			rows, err := e.graph.SimilarUsers(ctx, userID, limit)
			if err != nil {
				return nil, err
			}
			items := make([]recommend.Item, 0, len(rows))
			for _, row := range rows {
				items = append(items, recommend.Item{
					"id":               row.ID,
					"name":             row.Name,
					"username":         row.Username,
					"shared_followees": row.SharedFollowees,
				})
			}
			return items, nil
		})
	return result.WithUser(userID)
}

// RelatedArticles recommends published articles sharing a tag or category
// with the given article.
func (e *Engine) RelatedArticles(ctx context.Context, articleID string, limit int) recommend.Result {
	result := e.lookup(ctx, recommend.KindRelatedArticles, articleID, limit,
		func(ctx context.Context, limit int) ([]recommend.Item, error) {
			rows, err := e.graph.RelatedArticles(ctx, articleID, limit)
			if err != nil {
				return nil, err
			}
			return articleItems(rows), nil
		})
	return result.WithArticle(articleID)
}

// RecommendedArticles recommends published articles sharing taxonomy with
// articles the user liked, excluding those already liked.
func (e *Engine) RecommendedArticles(ctx context.Context, userID string, limit int) recommend.Result {
	result := e.lookup(ctx, recommend.KindRecommendedArticles, userID, limit,
		func(ctx context.Context, limit int) ([]recommend.Item, error) {
			rows, err := e.graph.RecommendedArticles(ctx, userID, limit)
			if err != nil {
				return nil, err
			}
			return articleItems(rows), nil
		})
	return result.WithUser(userID)
}

// InfluentialAuthors lists users above the follower threshold, most followed
// first.
func (e *Engine) InfluentialAuthors(ctx context.Context, limit int) recommend.Result {
	return e.lookup(ctx, recommend.KindInfluentialAuthors, "", limit,
		func(ctx context.Context, limit int) ([]recommend.Item, error) {
			rows, err := e.graph.InfluentialAuthors(ctx, e.minFollowers, limit)
			if err != nil {
				return nil, err
			}
			items := make([]recommend.Item, 0, len(rows))
			for _, row := range rows {
				items = append(items, recommend.Item{
					"id":             row.ID,
					"name":           row.Name,
					"username":       row.Username,
					"followers":      row.Followers,
					"articles_count": row.Articles,
				})
			}
			return items, nil
		})
}

// TopicsOfInterest ranks the tags and categories on articles the user liked.
func (e *Engine) TopicsOfInterest(ctx context.Context, userID string, limit int) recommend.Result {
	result := e.lookup(ctx, recommend.KindTopicsOfInterest, userID, limit,
		func(ctx context.Context, limit int) ([]recommend.Item, error) {
			rows, err := e.graph.TopicsOfInterest(ctx, userID, limit)
			if err != nil {
				return nil, err
			}
			items := make([]recommend.Item, 0, len(rows))
			for _, row := range rows {
				items = append(items, recommend.Item{
					"name":         row.Name,
					"kind":         string(row.Kind),
					"interactions": row.Interactions,
				})
			}
			return items, nil
		})
	return result.WithUser(userID)
}

func articleItems(rows []graphstore.RelatedArticle) []recommend.Item {
	items := make([]recommend.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, recommend.Item{
			"id":         row.ID,
			"title":      row.Title,
			"slug":       row.Slug,
			"view_count": row.ViewCount,
			"shared":     row.Shared,
		})
	}
	return items
}

// GraphAvailable reports whether the graph backend currently answers.
func (e *Engine) GraphAvailable(ctx context.Context) bool {
	return e.graph.Available(ctx)
}

// GraphStatistics reports node and relationship counts straight from the
// store, bypassing the cache.
func (e *Engine) GraphStatistics(ctx context.Context) (graphstore.Statistics, error) {
	return e.graph.Statistics(ctx)
}

// InvalidateCache drops every cached result. Handy after a bulk resync, when
// cached envelopes may describe the pre-sync graph.
func (e *Engine) InvalidateCache() {
	e.cache.Purge()
}
