package api

import (
	"context"
	"net/http"

	"github.com/okian/laurel/internal/ranking"
)

// LeaderboardDependencies defines the read side of both leaderboards.
type LeaderboardDependencies interface {
	Articles() *ranking.ArticleEngine
	Users() *ranking.UserEngine
}

// LeaderboardHandler handles leaderboard read requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, maxLimit: maxLimit}
}

// HandleTopArticles handles GET /leaderboard/articles?limit=N requests.
func (h *LeaderboardHandler) HandleTopArticles(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, func(ctx context.Context, limit int) (any, error) {
		return h.deps.Articles().TopArticles(ctx, limit)
	})
}

// HandleTopUsers handles GET /leaderboard/users?limit=N requests.
func (h *LeaderboardHandler) HandleTopUsers(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, func(ctx context.Context, limit int) (any, error) {
		return h.deps.Users().TopUsers(ctx, limit)
	})
}

// HandleEnrichedTopUsers handles GET /leaderboard/users/enriched?limit=N
// requests.
func (h *LeaderboardHandler) HandleEnrichedTopUsers(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, func(ctx context.Context, limit int) (any, error) {
		return h.deps.Users().EnrichedTopUsers(ctx, limit)
	})
}

func (h *LeaderboardHandler) serveList(w http.ResponseWriter, r *http.Request,
	read func(ctx context.Context, limit int) (any, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	rows, err := read(r.Context(), parseLimit(r, h.maxLimit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
