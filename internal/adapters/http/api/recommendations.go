package api

import (
	"net/http"

	"github.com/okian/laurel/internal/recommender"
)

// RecommendationsHandler handles the five recommendation query endpoints.
// The engine clamps limits and degrades to empty envelopes itself, so these
// handlers only route and serialize.
type RecommendationsHandler struct {
	engine *recommender.Engine
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(engine *recommender.Engine) *RecommendationsHandler {
	return &RecommendationsHandler{engine: engine}
}

// HandleSimilarUsers handles GET /recommendations/similar-users/{userId}.
func (h *RecommendationsHandler) HandleSimilarUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/recommendations/similar-users/")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.SimilarUsers(r.Context(), id, parseLimit(r, 0)))
}

// HandleRelatedArticles handles GET /recommendations/related-articles/{articleId}.
func (h *RecommendationsHandler) HandleRelatedArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/recommendations/related-articles/")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.RelatedArticles(r.Context(), id, parseLimit(r, 0)))
}

// HandleRecommendedArticles handles GET /recommendations/articles/{userId}.
func (h *RecommendationsHandler) HandleRecommendedArticles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/recommendations/articles/")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.RecommendedArticles(r.Context(), id, parseLimit(r, 0)))
}

// HandleInfluentialAuthors handles GET /recommendations/influential-authors.
func (h *RecommendationsHandler) HandleInfluentialAuthors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.InfluentialAuthors(r.Context(), parseLimit(r, 0)))
}

// HandleTopicsOfInterest handles GET /recommendations/topics/{userId}.
func (h *RecommendationsHandler) HandleTopicsOfInterest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "/recommendations/topics/")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.engine.TopicsOfInterest(r.Context(), id, parseLimit(r, 0)))
}
