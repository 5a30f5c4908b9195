package api

import (
	"net/http"
	"strings"
)

// RankHandler handles single-entity rank requests.
type RankHandler struct {
	deps LeaderboardDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps LeaderboardDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

type articleRankResponse struct {
	ArticleID string  `json:"article_id"`
	Rank      *int64  `json:"rank"`
	Score     float64 `json:"score"`
}

// HandleArticleRank handles GET /rank/articles/{id} requests. An article the
// board has never seen answers with a zero score and null rank.
func (h *RankHandler) HandleArticleRank(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/rank/articles/")
	if !ok {
		return
	}
	resp := articleRankResponse{ArticleID: id}

	score, err := h.deps.Articles().ArticleScore(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	resp.Score = score

	rank, ranked, err := h.deps.Articles().ArticleRank(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if ranked {
		resp.Rank = &rank
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUserRank handles GET /rank/users/{id} requests, answering with the
// enriched row: rank, score, and profile when one still exists.
func (h *RankHandler) HandleUserRank(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/rank/users/")
	if !ok {
		return
	}
	row, err := h.deps.Users().EnrichedUserRanking(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// pathID extracts the trailing path parameter, writing the error response
// itself when the request is unusable.
func pathID(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return "", false
	}
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return "", false
	}
	return id, true
}
