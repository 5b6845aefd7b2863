package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// SyncHandler triggers realm and owner refreshes and streams their progress
type SyncHandler struct {
	svc      *service.SyncService
	eventHub *service.EventHub
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(svc *service.SyncService, eventHub *service.EventHub) *SyncHandler {
	return &SyncHandler{svc: svc, eventHub: eventHub}
}

// RefreshRealms handles POST /api/refresh-realms-data
func (h *SyncHandler) RefreshRealms(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RefreshRealms(r.Context())
	if err != nil {
		var problem *model.ProblemDetails
		switch {
		case errors.Is(err, service.ErrSyncNotConfigured):
			problem = model.NewConfigurationError("Server configuration error: Missing SEASON_PASSES_SQL or SEASON_PASSES_CONTRACT_ADDRESS environment variables for owner lookup.")
		case errors.Is(err, service.ErrSyncInProgress):
			problem = MapServiceError(err)
		default:
			slog.Error("realm refresh failed", "error", err)
			problem = model.NewInternalError("Internal Server Error").WithDetails(err.Error())
		}
		WriteError(w, problem)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// RealmsInfo handles GET /api/refresh-realms-data
func (h *SyncHandler) RealmsInfo(w http.ResponseWriter, r *http.Request) {
	WriteMessage(w, http.StatusOK, "Realm data upsert endpoint. Use POST to trigger refresh.")
}

// RefreshOwners handles POST /api/update-owners
func (h *SyncHandler) RefreshOwners(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.RefreshOwners(r.Context())
	if err != nil {
		var problem *model.ProblemDetails
		switch {
		case errors.Is(err, service.ErrSyncNotConfigured):
			problem = model.NewConfigurationError("Server configuration error")
		case errors.Is(err, service.ErrSyncInProgress):
			problem = MapServiceError(err)
		case errors.Is(err, service.ErrTokenFetch):
			problem = model.NewInternalError("Failed to fetch token IDs from GQL").WithDetails(err.Error())
		case errors.Is(err, service.ErrOwnerWrite):
			problem = model.NewInternalError("Failed to update database").WithDetails(err.Error())
		default:
			slog.Error("owner refresh failed", "error", err)
			problem = model.NewInternalError("Internal Server Error")
		}
		WriteError(w, problem)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// OwnersInfo handles GET /api/update-owners
func (h *SyncHandler) OwnersInfo(w http.ResponseWriter, r *http.Request) {
	WriteMessage(w, http.StatusOK, "Owner update endpoint. Use POST to trigger updates.")
}

// SyncStatus reports which refresh jobs are running
type SyncStatus struct {
	Realms bool `json:"realms"`
	Owners bool `json:"owners"`
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, SyncStatus{
		Realms: h.svc.Running(model.SyncJobRealms),
		Owners: h.svc.Running(model.SyncJobOwners),
	})
}

// Events handles GET /api/sync/events and streams sync progress as SSE
func (h *SyncHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	// The stream outlives the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	subscriberID := uuid.New().String()
	sub := h.eventHub.Subscribe(subscriberID)
	defer h.eventHub.Unsubscribe(subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
