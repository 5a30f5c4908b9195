// Package api exposes the ranking and recommendation surface over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/laurel/internal/app"
)

// defaultLimit is used when a list endpoint gets no usable limit parameter.
const defaultLimit = 10

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	syncHandler        *SyncHandler
	recsHandler        *RecommendationsHandler
	graphHandler       *GraphHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(service *app.Service, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(service),
		leaderboardHandler: NewLeaderboardHandler(service, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(service),
		syncHandler:        NewSyncHandler(service),
		recsHandler:        NewRecommendationsHandler(service.Recommendations()),
		graphHandler:       NewGraphHandler(service.Recommendations()),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	handle := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, RequestIDMiddleware(MetricsMiddleware(h, endpoint)))
	}

	handle("/healthz", "healthz", s.healthHandler.HandleHealth)
	handle("/stats", "stats", s.statsHandler.HandleStats)

	handle("/leaderboard/articles", "leaderboard_articles", s.leaderboardHandler.HandleTopArticles)
	handle("/leaderboard/users", "leaderboard_users", s.leaderboardHandler.HandleTopUsers)
	handle("/leaderboard/users/enriched", "leaderboard_users_enriched", s.leaderboardHandler.HandleEnrichedTopUsers)

	handle("/rank/articles/", "rank_articles", s.rankHandler.HandleArticleRank)
	handle("/rank/users/", "rank_users", s.rankHandler.HandleUserRank)

	handle("/sync/rankings", "sync_rankings", s.syncHandler.HandleSyncRankings)
	handle("/sync/graph", "sync_graph", s.syncHandler.HandleSyncGraph)

	handle("/recommendations/similar-users/", "recs_similar_users", s.recsHandler.HandleSimilarUsers)
	handle("/recommendations/related-articles/", "recs_related_articles", s.recsHandler.HandleRelatedArticles)
	handle("/recommendations/articles/", "recs_articles", s.recsHandler.HandleRecommendedArticles)
	handle("/recommendations/influential-authors", "recs_influential_authors", s.recsHandler.HandleInfluentialAuthors)
	handle("/recommendations/topics/", "recs_topics", s.recsHandler.HandleTopicsOfInterest)

	handle("/graph/health", "graph_health", s.graphHandler.HandleHealth)
	handle("/graph/stats", "graph_stats", s.graphHandler.HandleStats)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseLimit reads ?limit=N, falling back to the default and clamping to max.
// The engines clamp rather than reject oversized limits, and the HTTP layer
// follows suit.
func parseLimit(r *http.Request, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		n = defaultLimit
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
