// Package ranking maintains the two real-time leaderboards: article
// popularity by views and user influence by the weighted multi-factor score.
//
// Event-driven updates increment scores in place; SyncFromDatabase rebuilds a
// board wholesale from the system of record. Those are two different
// consistency models on the same key, kept as distinct entry points on
// purpose: a resync overwrites any drift the increments accumulated.
package ranking

import (
	"context"
	"time"

	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// Leaderboard keys and defaults.
const (
	articleKey = "articles:ranking:views"
	userKey    = "users:ranking:influence"

	// defaultTTL bounds storage cost: a board nobody writes to for this long
	// silently disappears. Refreshed on every write.
	defaultTTL = 90 * 24 * time.Hour

	defaultBatchSize = 500
)

const (
	boardArticles = "articles"
	boardUsers    = "users"
)

// ArticleRank is one row of the article leaderboard.
type ArticleRank struct {
	ArticleID string  `json:"article_id"`
	Score     float64 `json:"score"`
}

// ArticleStats aggregates the article leaderboard.
type ArticleStats struct {
	TotalArticles int64   `json:"total_articles"`
	TotalViews    float64 `json:"total_views"`
	TopScore      float64 `json:"top_score"`
}

// ArticleEngine maintains the views leaderboard.
type ArticleEngine struct {
	store  scorestore.Store
	source record.Source
	ttl    time.Duration
	batch  int
	log    logger.Logger
}

// ArticleOption applies a configuration option to the ArticleEngine.
type ArticleOption func(*ArticleEngine)

// WithArticleTTL overrides the leaderboard expiration.
func WithArticleTTL(ttl time.Duration) ArticleOption {
	return func(e *ArticleEngine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithArticleBatchSize bounds resync batch sizes.
func WithArticleBatchSize(n int) ArticleOption {
	return func(e *ArticleEngine) {
		if n > 0 {
			e.batch = n
		}
	}
}

// WithArticleLogger sets a custom logger.
func WithArticleLogger(log logger.Logger) ArticleOption {
	return func(e *ArticleEngine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewArticleEngine constructs the article ranking engine.
func NewArticleEngine(store scorestore.Store, source record.Source, opts ...ArticleOption) *ArticleEngine {
	e := &ArticleEngine{
		store:  store,
		source: source,
		ttl:    defaultTTL,
		batch:  defaultBatchSize,
		log:    logger.Get().Named("ranking.articles"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IncrementView bumps an article's view score. It is a side effect of the
// read path: store failures are logged and counted, never propagated, so a
// broken leaderboard cannot block article reads.
func (e *ArticleEngine) IncrementView(ctx context.Context, articleID string, delta int64) {
	if _, err := e.store.IncrBy(ctx, articleKey, articleID, float64(delta)); err != nil {
		metrics.RecordRankingError(boardArticles)
		e.log.Warn(ctx, "view increment dropped", logger.String("article_id", articleID), logger.Error(err))
		return
	}
	metrics.RecordRankingUpdate(boardArticles)
	e.refreshExpiration(ctx)
}

// TopArticles returns the limit highest-viewed articles, best first.
func (e *ArticleEngine) TopArticles(ctx context.Context, limit int) ([]ArticleRank, error) {
	if limit < 1 {
		return []ArticleRank{}, nil
	}
	entries, err := e.store.Range(ctx, articleKey, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	out := make([]ArticleRank, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ArticleRank{ArticleID: entry.Member, Score: entry.Score})
	}
	return out, nil
}

// ArticleRank returns the 1-based rank, or false for an unranked article.
func (e *ArticleEngine) ArticleRank(ctx context.Context, articleID string) (int64, bool, error) {
	return e.store.Rank(ctx, articleKey, articleID)
}

// ArticleScore returns the article's score; never-written articles score 0.0,
// indistinguishable from a true zero.
func (e *ArticleEngine) ArticleScore(ctx context.Context, articleID string) (float64, error) {
	score, _, err := e.store.Score(ctx, articleKey, articleID)
	if err != nil {
		return 0, err
	}
	return score, nil
}

// RemoveArticle drops an article from the board, typically when it is
// deleted or unpublished. Removing an unranked article is a no-op.
func (e *ArticleEngine) RemoveArticle(ctx context.Context, articleID string) error {
	return e.store.Remove(ctx, articleKey, articleID)
}

// SyncFromDatabase rebuilds the board from the system of record: the key is
// cleared, then every published article with views is written with its
// authoritative view count. A full overwrite, not a merge. Returns the number
// of articles written.
func (e *ArticleEngine) SyncFromDatabase(ctx context.Context) (int, error) {
	start := time.Now()
	if err := e.store.Clear(ctx, articleKey); err != nil {
		return 0, err
	}

	written := 0
	err := e.source.PublishedArticles(ctx, e.batch, func(rows []record.Article) error {
		for _, a := range rows {
			if a.ViewCount <= 0 {
				continue
			}
			if err := e.store.Set(ctx, articleKey, a.ID, float64(a.ViewCount)); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return written, err
	}
	e.refreshExpiration(ctx)

	metrics.RecordRankingSyncEntries(boardArticles, written)
	metrics.RecordRankingSyncDuration(float64(time.Since(start).Milliseconds()))
	e.log.Info(ctx, "article leaderboard resynced", logger.Int("articles", written))
	return written, nil
}

// Statistics reports the board's cardinality, score sum, and best score.
func (e *ArticleEngine) Statistics(ctx context.Context) (ArticleStats, error) {
	total, err := e.store.Card(ctx, articleKey)
	if err != nil {
		return ArticleStats{}, err
	}
	entries, err := e.store.Range(ctx, articleKey, 0, -1)
	if err != nil {
		return ArticleStats{}, err
	}
	stats := ArticleStats{TotalArticles: total}
	for i, entry := range entries {
		if i == 0 {
			stats.TopScore = entry.Score
		}
		stats.TotalViews += entry.Score
	}
	metrics.UpdateLeaderboardSize(boardArticles, total)
	return stats, nil
}

func (e *ArticleEngine) refreshExpiration(ctx context.Context) {
	if err := e.store.Expire(ctx, articleKey, e.ttl); err != nil {
		e.log.Warn(ctx, "expiration refresh failed", logger.Error(err))
	}
}
