package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// IdentityHandler resolves Cartridge controller identities
type IdentityHandler struct {
	svc *service.IdentityService
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(svc *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{svc: svc}
}

// AddressResponse carries a resolved controller address
type AddressResponse struct {
	Address string `json:"address"`
}

// Address handles GET /api/cartridge-address?username=
func (h *IdentityHandler) Address(w http.ResponseWriter, r *http.Request) {
	address, err := h.svc.AddressByUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		WriteError(w, addressError(err))
		return
	}
	WriteJSON(w, http.StatusOK, AddressResponse{Address: address})
}

type usernamesRequest struct {
	Addresses []string `json:"addresses"`
}

// Usernames handles POST /api/cartridge-usernames
func (h *IdentityHandler) Usernames(w http.ResponseWriter, r *http.Request) {
	var req usernamesRequest
	if err := DecodeJSON(r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			WriteError(w, usernamesError(service.ErrAddressesRequired))
			return
		}
		WriteError(w, model.NewBadRequestError("Invalid JSON in request body"))
		return
	}

	usernames, err := h.svc.UsernamesByAddresses(r.Context(), req.Addresses)
	if err != nil {
		WriteError(w, usernamesError(err))
		return
	}
	WriteJSON(w, http.StatusOK, usernames)
}
