package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// RealmHandler serves stored season pass realms
type RealmHandler struct {
	svc *service.RealmService
}

// NewRealmHandler creates a new realm handler
func NewRealmHandler(svc *service.RealmService) *RealmHandler {
	return &RealmHandler{svc: svc}
}

// List handles GET /api/realms. With ?name= a single match is returned as an
// object and several matches as an array.
func (h *RealmHandler) List(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		realms, err := h.svc.List(r.Context())
		if err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
		WriteJSON(w, http.StatusOK, realms)
		return
	}

	matched, err := h.svc.FindByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrRealmNotFound) {
			WriteError(w, model.NewNotFoundError(fmt.Sprintf("Realm with name '%s' not found", name)))
			return
		}
		WriteError(w, MapServiceError(err))
		return
	}
	if len(matched) == 1 {
		WriteJSON(w, http.StatusOK, matched[0])
		return
	}
	WriteJSON(w, http.StatusOK, matched)
}

// Get handles GET /api/realms/{realmId}
func (h *RealmHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("realmId"))
	if err != nil || id <= 0 {
		WriteError(w, model.NewBadRequestError("realm id must be a positive integer"))
		return
	}

	detail, err := h.svc.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRealmNotFound) {
			WriteError(w, model.NewNotFoundError(fmt.Sprintf("Realm with id %d not found", id)))
			return
		}
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}
