package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

// Pinger checks that a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// AssetClock reports when map assets were last loaded
type AssetClock interface {
	LoadedAt() time.Time
}

// HealthHandler reports service liveness
type HealthHandler struct {
	db     Pinger
	assets AssetClock
}

// NewHealthHandler creates a new health handler. Either dependency may be nil.
func NewHealthHandler(db Pinger, assets AssetClock) *HealthHandler {
	return &HealthHandler{db: db, assets: assets}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	MapAsset string `json:"mapAssets,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	if h.assets != nil {
		if at := h.assets.LoadedAt(); at.IsZero() {
			resp.MapAsset = "not loaded"
		} else {
			resp.MapAsset = "loaded " + humanize.Time(at)
		}
	}

	WriteJSON(w, status, resp)
}
