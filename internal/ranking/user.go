package ranking

import (
	"context"
	"time"

	"github.com/okian/laurel/internal/adapters/scorestore"
	"github.com/okian/laurel/internal/domain/influence"
	"github.com/okian/laurel/internal/record"
	"github.com/okian/laurel/pkg/logger"
	"github.com/okian/laurel/pkg/metrics"
)

// UserRank is one raw row of the influence leaderboard.
type UserRank struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// EnrichedRank joins a leaderboard row with the user's profile. User is nil
// when the profile has been deleted since the row was scored; Rank is nil for
// unranked users.
type EnrichedRank struct {
	UserID string       `json:"user_id"`
	Rank   *int64       `json:"rank"`
	Score  float64      `json:"score"`
	User   *record.User `json:"user"`
}

// UserStats aggregates the influence leaderboard.
type UserStats struct {
	TotalUsers   int64   `json:"total_users"`
	TotalScore   float64 `json:"total_score"`
	TopScore     float64 `json:"top_score"`
	AverageScore float64 `json:"average_score"`
}

// UserEngine maintains the influence leaderboard.
type UserEngine struct {
	store  scorestore.Store
	source record.Source
	ttl    time.Duration
	batch  int
	log    logger.Logger
}

// UserOption applies a configuration option to the UserEngine.
type UserOption func(*UserEngine)

// WithUserTTL overrides the leaderboard expiration.
func WithUserTTL(ttl time.Duration) UserOption {
	return func(e *UserEngine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithUserBatchSize bounds resync batch sizes.
func WithUserBatchSize(n int) UserOption {
	return func(e *UserEngine) {
		if n > 0 {
			e.batch = n
		}
	}
}

// WithUserLogger sets a custom logger.
func WithUserLogger(log logger.Logger) UserOption {
	return func(e *UserEngine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewUserEngine constructs the user ranking engine.
func NewUserEngine(store scorestore.Store, source record.Source, opts ...UserOption) *UserEngine {
	e := &UserEngine{
		store:  store,
		source: source,
		ttl:    defaultTTL,
		batch:  defaultBatchSize,
		log:    logger.Get().Named("ranking.users"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateInfluenceScore derives the weighted influence score from the
// system of record. Unknown users score 0.0 rather than erroring; callers
// that care about existence check it themselves.
func (e *UserEngine) CalculateInfluenceScore(ctx context.Context, userID string) (float64, error) {
	stats, exists, err := e.influenceStats(ctx, userID)
	if err != nil || !exists {
		return 0, err
	}
	return influence.Score(stats), nil
}

// InfluenceBreakdown explains the user's score factor by factor.
func (e *UserEngine) InfluenceBreakdown(ctx context.Context, userID string) (influence.Breakdown, error) {
	stats, _, err := e.influenceStats(ctx, userID)
	if err != nil {
		return influence.Breakdown{}, err
	}
	return influence.Compute(stats), nil
}

func (e *UserEngine) influenceStats(ctx context.Context, userID string) (influence.Stats, bool, error) {
	_, exists, err := e.source.FindUserByID(ctx, userID)
	if err != nil || !exists {
		return influence.Stats{}, false, err
	}
	followers, err := e.source.FollowerCount(ctx, userID)
	if err != nil {
		return influence.Stats{}, false, err
	}
	author, err := e.source.AuthorStats(ctx, userID)
	if err != nil {
		return influence.Stats{}, false, err
	}
	return influence.Stats{
		Followers: followers,
		Views:     author.TotalViews,
		Likes:     author.TotalLikes,
		Comments:  author.TotalComments,
		Articles:  author.Articles,
	}, true, nil
}

// UpdateScore overwrites the user's stored score.
func (e *UserEngine) UpdateScore(ctx context.Context, userID string, score float64) error {
	if err := e.store.Set(ctx, userKey, userID, score); err != nil {
		metrics.RecordRankingError(boardUsers)
		return err
	}
	metrics.RecordRankingUpdate(boardUsers)
	e.refreshExpiration(ctx)
	return nil
}

// IncrementScore adjusts the user's stored score by delta.
func (e *UserEngine) IncrementScore(ctx context.Context, userID string, delta float64) error {
	if _, err := e.store.IncrBy(ctx, userKey, userID, delta); err != nil {
		metrics.RecordRankingError(boardUsers)
		return err
	}
	metrics.RecordRankingUpdate(boardUsers)
	e.refreshExpiration(ctx)
	return nil
}

// RecalculateUser recomputes and stores the user's score, used after a
// triggering event such as a new follower.
func (e *UserEngine) RecalculateUser(ctx context.Context, userID string) (float64, error) {
	score, err := e.CalculateInfluenceScore(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := e.UpdateScore(ctx, userID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// RemoveUser evicts a user from the board.
func (e *UserEngine) RemoveUser(ctx context.Context, userID string) error {
	return e.store.Remove(ctx, userKey, userID)
}

// ResetRanking drops the whole board.
func (e *UserEngine) ResetRanking(ctx context.Context) error {
	return e.store.Clear(ctx, userKey)
}

// TopUsers returns the limit most influential users, best first.
func (e *UserEngine) TopUsers(ctx context.Context, limit int) ([]UserRank, error) {
	if limit < 1 {
		return []UserRank{}, nil
	}
	entries, err := e.store.Range(ctx, userKey, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	out := make([]UserRank, 0, len(entries))
	for _, entry := range entries {
		out = append(out, UserRank{UserID: entry.Member, Score: entry.Score})
	}
	return out, nil
}

// UserRank returns the 1-based rank, or false for an unranked user.
func (e *UserEngine) UserRank(ctx context.Context, userID string) (int64, bool, error) {
	return e.store.Rank(ctx, userKey, userID)
}

// UserScore returns the user's stored score; unranked users score 0.0.
func (e *UserEngine) UserScore(ctx context.Context, userID string) (float64, error) {
	score, _, err := e.store.Score(ctx, userKey, userID)
	if err != nil {
		return 0, err
	}
	return score, nil
}

// EnrichedTopUsers returns the top slice joined with profile records. The
// profiles are bulk-loaded in one query; a ranked id whose profile has been
// deleted keeps its rank and score with a nil profile, and ordering is
// preserved either way.
func (e *UserEngine) EnrichedTopUsers(ctx context.Context, limit int) ([]EnrichedRank, error) {
	rows, err := e.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	profiles, err := e.source.FindUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]EnrichedRank, 0, len(rows))
	for _, row := range rows {
		rank, ok, err := e.store.Rank(ctx, userKey, row.UserID)
		if err != nil {
			return nil, err
		}
		enriched := EnrichedRank{UserID: row.UserID, Score: row.Score}
		if ok {
			enriched.Rank = &rank
		}
		if profile, found := profiles[row.UserID]; found {
			enriched.User = &profile
		}
		out = append(out, enriched)
	}
	return out, nil
}

// EnrichedUserRanking returns one user's rank, score, and profile. An
// unranked or unknown user yields a zero score and nil rank, not an error.
func (e *UserEngine) EnrichedUserRanking(ctx context.Context, userID string) (EnrichedRank, error) {
	enriched := EnrichedRank{UserID: userID}

	score, _, err := e.store.Score(ctx, userKey, userID)
	if err != nil {
		return EnrichedRank{}, err
	}
	enriched.Score = score

	rank, ok, err := e.store.Rank(ctx, userKey, userID)
	if err != nil {
		return EnrichedRank{}, err
	}
	if ok {
		enriched.Rank = &rank
	}

	profile, exists, err := e.source.FindUserByID(ctx, userID)
	if err != nil {
		return EnrichedRank{}, err
	}
	if exists {
		enriched.User = &profile
	}
	return enriched, nil
}

// SyncFromDatabase rebuilds the board by recomputing every user's influence
// score. The user stream is batched so memory stays bounded; the per-user
// collaborator lookups make this O(N) and it is meant for periodic or manual
// invocation. Returns the number of users written.
func (e *UserEngine) SyncFromDatabase(ctx context.Context) (int, error) {
	start := time.Now()
	if err := e.store.Clear(ctx, userKey); err != nil {
		return 0, err
	}

	written := 0
	err := e.source.Users(ctx, e.batch, func(rows []record.User) error {
		for _, u := range rows {
			score, err := e.CalculateInfluenceScore(ctx, u.ID)
			if err != nil {
				return err
			}
			if err := e.store.Set(ctx, userKey, u.ID, score); err != nil {
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

	metrics.RecordRankingSyncEntries(boardUsers, written)
	metrics.RecordRankingSyncDuration(float64(time.Since(start).Milliseconds()))
	e.log.Info(ctx, "influence leaderboard resynced", logger.Int("users", written))
	return written, nil
}

// Statistics reports cardinality, score sum, best score, and the average.
func (e *UserEngine) Statistics(ctx context.Context) (UserStats, error) {
	total, err := e.store.Card(ctx, userKey)
	if err != nil {
		return UserStats{}, err
	}
	entries, err := e.store.Range(ctx, userKey, 0, -1)
	if err != nil {
		return UserStats{}, err
	}
	stats := UserStats{TotalUsers: total}
	for i, entry := range entries {
		if i == 0 {
			stats.TopScore = entry.Score
		}
		stats.TotalScore += entry.Score
	}
	if total > 0 {
		stats.AverageScore = influence.Round(stats.TotalScore / float64(total))
	}
	metrics.UpdateLeaderboardSize(boardUsers, total)
	return stats, nil
}

func (e *UserEngine) refreshExpiration(ctx context.Context) {
	if err := e.store.Expire(ctx, userKey, e.ttl); err != nil {
		e.log.Warn(ctx, "expiration refresh failed", logger.Error(err))
	}
}
