package api

import (
	"context"
	"net/http"

	"github.com/okian/laurel/internal/app"
	"github.com/okian/laurel/internal/graphsync"
)

// SyncDependencies defines the resync triggers.
type SyncDependencies interface {
	SyncRankings(ctx context.Context) (app.SyncReport, error)
	SyncGraph(ctx context.Context) (graphsync.Counts, error)
}

// SyncHandler handles manual resync triggers.
type SyncHandler struct {
	deps SyncDependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandleSyncRankings handles POST /sync/rankings requests.
func (h *SyncHandler) HandleSyncRankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	report, err := h.deps.SyncRankings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSyncGraph handles POST /sync/graph requests.
func (h *SyncHandler) HandleSyncGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	counts, err := h.deps.SyncGraph(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
