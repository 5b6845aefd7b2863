package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// GameDataHandler proxies and reshapes game data SQL queries
type GameDataHandler struct {
	svc *service.GameDataService
}

// NewGameDataHandler creates a new game data handler
func NewGameDataHandler(svc *service.GameDataService) *GameDataHandler {
	return &GameDataHandler{svc: svc}
}

func (h *GameDataHandler) proxy(w http.ResponseWriter, r *http.Request, failure string, fetch func(context.Context) (json.RawMessage, error)) {
	body, err := fetch(r.Context())
	if err != nil {
		WriteError(w, gameDataError(err, failure))
		return
	}
	WriteRaw(w, http.StatusOK, body)
}

// Tribes handles GET /api/tribes
func (h *GameDataHandler) Tribes(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "tribes data", h.svc.RawTribes)
}

// Armies handles GET /api/armies
func (h *GameDataHandler) Armies(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "armies data", h.svc.RawArmies)
}

// Structures handles GET /api/eternum-structures
func (h *GameDataHandler) Structures(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "structures", h.svc.RawStructures)
}

// StructureResources handles GET /api/structures-resources
func (h *GameDataHandler) StructureResources(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, "structure resources data", h.svc.RawStructureResources)
}

// TribeSummary handles GET /api/tribes/summary
func (h *GameDataHandler) TribeSummary(w http.ResponseWriter, r *http.Request) {
	tribes, err := h.svc.Tribes(r.Context())
	if err != nil {
		WriteError(w, gameDataError(err, "tribes data"))
		return
	}
	WriteJSON(w, http.StatusOK, tribes)
}

// RealmStructures handles GET /api/realm-structures?owner=&tribeId=&guardFilter=1
func (h *GameDataHandler) RealmStructures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RealmStructureFilter{
		Owner:       q.Get("owner"),
		TribeID:     q.Get("tribeId"),
		GuardFilter: isTruthy(q.Get("guardFilter")),
	}

	list, err := h.svc.RealmStructures(r.Context(), filter)
	if err != nil {
		WriteError(w, gameDataError(err, "structures"))
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
