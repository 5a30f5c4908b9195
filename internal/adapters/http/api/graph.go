package api

import (
	"net/http"

	"github.com/okian/laurel/internal/recommender"
)

// GraphHandler handles graph availability and statistics requests.
type GraphHandler struct {
	engine *recommender.Engine
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(engine *recommender.Engine) *GraphHandler {
	return &GraphHandler{engine: engine}
}

type graphHealthResponse struct {
	Available bool `json:"available"`
}

// HandleHealth handles GET /graph/health requests. An unavailable graph is a
// degraded mode, not a failure, so the status is 200 either way.
func (h *GraphHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, graphHealthResponse{Available: h.engine.GraphAvailable(r.Context())})
}

// HandleStats handles GET /graph/stats requests.
func (h *GraphHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	stats, err := h.engine.GraphStatistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
