package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// MemberHandler handles guild roster requests
type MemberHandler struct {
	svc *service.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// List handles GET /api/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list members failed", "error", err)
		WriteError(w, model.NewInternalError("Internal Server Error"))
		return
	}
	WriteJSON(w, http.StatusOK, members)
}

// Add handles POST /api/members
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	var ref model.MemberRef
	if err := DecodeJSON(r, &ref); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON in request body"))
		return
	}

	if _, err := h.svc.Add(r.Context(), ref); err != nil {
		h.handleError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, model.SuccessResponse{Success: true})
}

// Delete handles DELETE /api/members
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var ref model.MemberRef
	if err := DecodeJSON(r, &ref); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON in request body"))
		return
	}

	if _, err := h.svc.Remove(r.Context(), ref); err != nil {
		h.handleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, model.SuccessResponse{Success: true})
}

// UpdateElite handles PUT /api/members/update-elite
func (h *MemberHandler) UpdateElite(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEliteRequest
	if err := DecodeJSON(r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "isElite" {
			h.handleError(w, service.ErrEliteFlagRequired)
			return
		}
		WriteError(w, model.NewBadRequestError("Invalid JSON in request body"))
		return
	}

	result, err := h.svc.UpdateElite(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, model.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Elite status updated. Matched: %d, Modified: %d", result.Matched, result.Modified),
	})
}

// UpdateRoles handles PUT /api/members/roles
func (h *MemberHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRolesRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("Invalid JSON in request body"))
		return
	}
	if len(req.Roles) > 0 {
		if errs := req.Validate(); len(errs) > 0 {
			WriteError(w, model.NewValidationError(errs))
			return
		}
	}

	result, err := h.svc.UpdateRoles(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if result == nil {
		WriteMessage(w, http.StatusOK, "No valid role updates to perform.")
		return
	}
	WriteJSON(w, http.StatusOK, model.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Roles updated. Matched: %d, Modified: %d", result.Matched, result.Modified),
	})
}

// WithRealmCounts handles GET /api/members-with-realm-counts
func (h *MemberHandler) WithRealmCounts(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListWithRealmCounts(r.Context())
	if err != nil {
		slog.Error("member realm counts failed", "error", err)
		WriteError(w, model.NewInternalError("Failed to fetch member data: "+err.Error()))
		return
	}
	WriteJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(err))
}
