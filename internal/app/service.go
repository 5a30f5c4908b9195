// Package app wires the ranking engines, the graph pipeline, and the
// recommendation engine behind one service facade.
//
// The facade's event methods are the synchronous hooks the content platform
// calls as part of its own writes: saving an article, following a user, and
// so on. Each hook fans the change out to every subsystem that cares, so the
// leaderboards and the graph track the system of record without a broker in
// between.
package app

import (
	"context"

	"github.com/okian/laurel/internal/graphsync"
	"github.com/okian/laurel/internal/ranking"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/internal/recommender"
	"github.com/okian/laurel/pkg/logger"
)

// SyncReport aggregates one full resync across every subsystem.
type SyncReport struct {
	Articles int             `json:"articles"`
	Users    int             `json:"users"`
	Graph    graphsync.Counts `json:"graph"`
}

// Stats bundles the aggregate views of both leaderboards.
type Stats struct {
	Articles ranking.ArticleStats `json:"articles"`
	Users    ranking.UserStats    `json:"users"`
}

// Service is the application facade over ranking, graph sync, and
// recommendations.
type Service struct {
	articles *ranking.ArticleEngine
	users    *ranking.UserEngine
	pipeline *graphsync.Pipeline
	recs     *recommender.Engine
	log      logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService constructs the service facade.
func NewService(
	articles *ranking.ArticleEngine,
	users *ranking.UserEngine,
	pipeline *graphsync.Pipeline,
	recs *recommender.Engine,
	opts ...Option,
) *Service {
	s := &Service{
		articles: articles,
		users:    users,
		pipeline: pipeline,
		recs:     recs,
		log:      logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Articles exposes the article ranking engine.
func (s *Service) Articles() *ranking.ArticleEngine { return s.articles }

// Users exposes the user influence engine.
func (s *Service) Users() *ranking.UserEngine { return s.users }

// Recommendations exposes the recommendation engine.
func (s *Service) Recommendations() *recommender.Engine { return s.recs }

// ArticleViewed records one read of an article. Never fails: a broken
// leaderboard must not block the read path.
func (s *Service) ArticleViewed(ctx context.Context, articleID string) {
	s.articles.IncrementView(ctx, articleID, 1)
}

// ArticleSaved handles article create, update, publish, and restore. The
// graph projection follows the article's status; the author's influence is
// recomputed since article counts and totals feed it.
func (s *Service) ArticleSaved(ctx context.Context, a record.Article) error {
	if err := s.pipeline.ArticleSaved(ctx, a); err != nil {
		return err
	}
	if !a.Published() {
		if err := s.articles.RemoveArticle(ctx, a.ID); err != nil {
			return err
		}
	}
	return s.recalcAuthor(ctx, a.AuthorID)
}

// ArticleDeleted removes the article from both the graph and the view
// leaderboard, then recomputes the author's influence.
func (s *Service) ArticleDeleted(ctx context.Context, articleID, authorID string) error {
	if err := s.pipeline.ArticleDeleted(ctx, articleID); err != nil {
		return err
	}
	if err := s.articles.RemoveArticle(ctx, articleID); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, authorID)
}

// UserSaved projects a created or updated profile into the graph and scores
// the user.
func (s *Service) UserSaved(ctx context.Context, u record.User) error {
	if err := s.pipeline.UserSaved(ctx, u); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, u.ID)
}

// UserDeleted removes the user from the graph and the influence board.
func (s *Service) UserDeleted(ctx context.Context, userID string) error {
	if err := s.pipeline.UserDeleted(ctx, userID); err != nil {
		return err
	}
	return s.users.RemoveUser(ctx, userID)
}

// FollowCreated records a new follow edge and rescores the followee, whose
// follower count just changed.
func (s *Service) FollowCreated(ctx context.Context, followerID, followeeID string) error {
	if err := s.pipeline.FollowCreated(ctx, followerID, followeeID); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, followeeID)
}

// FollowDeleted removes a follow edge and rescores the followee.
func (s *Service) FollowDeleted(ctx context.Context, followerID, followeeID string) error {
	if err := s.pipeline.FollowDeleted(ctx, followerID, followeeID); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, followeeID)
}

// LikeCreated records a like edge and rescores the liked article's author.
func (s *Service) LikeCreated(ctx context.Context, userID, articleID, authorID string) error {
	if err := s.pipeline.LikeCreated(ctx, userID, articleID); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, authorID)
}

// LikeDeleted removes a like edge and rescores the liked article's author.
func (s *Service) LikeDeleted(ctx context.Context, userID, articleID, authorID string) error {
	if err := s.pipeline.LikeDeleted(ctx, userID, articleID); err != nil {
		return err
	}
	return s.recalcAuthor(ctx, authorID)
}

func (s *Service) recalcAuthor(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	_, err := s.users.RecalculateUser(ctx, userID)
	return err
}

// SyncRankings rebuilds both leaderboards from the system of record.
func (s *Service) SyncRankings(ctx context.Context) (SyncReport, error) {
	var report SyncReport
	articles, err := s.articles.SyncFromDatabase(ctx)
	if err != nil {
		return report, err
	}
	report.Articles = articles

	users, err := s.users.SyncFromDatabase(ctx)
	if err != nil {
		return report, err
	}
	report.Users = users
	return report, nil
}

// SyncGraph rebuilds the property graph and drops cached recommendations,
// which may describe the pre-sync graph.
func (s *Service) SyncGraph(ctx context.Context) (graphsync.Counts, error) {
	counts, err := s.pipeline.SyncFromDatabase(ctx)
	if err != nil {
		return counts, err
	}
	s.recs.InvalidateCache()
	return counts, nil
}

// SyncAll runs both resyncs back to back.
func (s *Service) SyncAll(ctx context.Context) (SyncReport, error) {
	report, err := s.SyncRankings(ctx)
	if err != nil {
		return report, err
	}
	report.Graph, err = s.SyncGraph(ctx)
	return report, err
}

// GetStats reports both leaderboards' aggregates.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	articles, err := s.articles.Statistics(ctx)
	if err != nil {
		return Stats{}, err
	}
	users, err := s.users.Statistics(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Articles: articles, Users: users}, nil
}
