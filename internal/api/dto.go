package api

import (
	"github.com/arnarsson/gitpress/internal/models"
)

// SyncResponse wraps the outcome of a sync run.
type SyncResponse struct {
	Mode  string            `json:"mode"`
	Stats *models.SyncStats `json:"stats"`
}

// StatusResponse reports engine state for GET /api/status.
type StatusResponse struct {
	State     string            `json:"state"`
	LastStats *models.SyncStats `json:"last_stats,omitempty"`
	Listeners int               `json:"listeners,omitempty"`
}
