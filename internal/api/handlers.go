package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arnarsson/gitpress/internal/apperr"
	"github.com/arnarsson/gitpress/internal/models"
)

// Syncer is the engine surface the API exposes.
type Syncer interface {
	FullSync(ctx context.Context) (*models.SyncStats, error)
	IncrementalSync(ctx context.Context) (*models.SyncStats, error)
	Preview(ctx context.Context) (*models.Preview, error)
	LastStats() *models.SyncStats
}

// Handler holds API route handlers.
type Handler struct {
	engine Syncer
}

// NewHandler creates a new Handler.
func NewHandler(engine Syncer) *Handler {
	return &Handler{engine: engine}
}

// Sync handles POST /api/sync. The mode query parameter selects full
// (the default) or incremental; an incremental request without a stored
// bookmark is rejected rather than silently upgraded.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "full"
	}

	var (
		stats *models.SyncStats
		err   error
	)
	switch mode {
	case "full":
		stats, err = h.engine.FullSync(r.Context())
	case "incremental":
		stats, err = h.engine.IncrementalSync(r.Context())
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("mode must be full or incremental"))
		return
	}

	if err != nil {
		if errors.Is(err, apperr.ErrNoBookmark) {
			writeJSON(w, http.StatusConflict,
				errorBodyCode("no sync bookmark recorded, run a full sync first", "no_bookmark"))
			return
		}
		slog.Error("sync failed", slog.String("mode", mode), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("sync failed"))
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Mode: mode, Stats: stats})
}

// Preview handles GET /api/preview: the dry-run diff of what a full
// sync would change.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	preview, err := h.engine.Preview(r.Context())
	if err != nil {
		slog.Error("preview failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("preview failed"))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{State: "idle"}
	if stats := h.engine.LastStats(); stats != nil {
		resp.LastStats = stats
	} else {
		resp.State = "never-synced"
	}
	writeJSON(w, http.StatusOK, resp)
}
