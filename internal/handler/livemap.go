package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/eternumwasd/api/internal/model"
	"github.com/eternumwasd/api/internal/service"
)

// LiveMapHandler serves the computed world and settlement maps
type LiveMapHandler struct {
	svc *service.LiveMapService
}

// NewLiveMapHandler creates a new live map handler
func NewLiveMapHandler(svc *service.LiveMapService) *LiveMapHandler {
	return &LiveMapHandler{svc: svc}
}

// LiveMap handles GET /api/live-map
func (h *LiveMapHandler) LiveMap(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	viewport, errs := parseViewport(q)
	if len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	out, err := h.svc.LiveMap(r.Context(), model.LiveMapQuery{
		Layer:    model.MapLayer(q.Get("layer")),
		Resource: q.Get("resource"),
		TribeID:  q.Get("tribeId"),
		Player:   q.Get("player"),
		Viewport: viewport,
	})
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// Hex handles GET /api/live-map/hex?x=&y=
func (h *LiveMapHandler) Hex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var errs []model.FieldError
	x, err := strconv.Atoi(q.Get("x"))
	if err != nil {
		errs = append(errs, model.FieldError{Field: "x", Message: "must be an integer"})
	}
	y, err := strconv.Atoi(q.Get("y"))
	if err != nil {
		errs = append(errs, model.FieldError{Field: "y", Message: "must be an integer"})
	}
	if len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	detail, err := h.svc.HexDetail(r.Context(), x, y)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// Settlement handles GET /api/settlement-map
func (h *LiveMapHandler) Settlement(w http.ResponseWriter, r *http.Request) {
	viewport, errs := parseViewport(r.URL.Query())
	if len(errs) > 0 {
		WriteError(w, model.NewValidationError(errs))
		return
	}

	out, err := h.svc.SettlementMap(viewport)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// parseViewport reads the optional zoom, panX and panY parameters. Only
// finite numbers are accepted.
func parseViewport(q url.Values) (model.ViewportQuery, []model.FieldError) {
	var (
		v    model.ViewportQuery
		errs []model.FieldError
	)
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"zoom", &v.Zoom},
		{"panX", &v.PanX},
		{"panY", &v.PanY},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			errs = append(errs, model.FieldError{Field: p.name, Message: "must be a number"})
			continue
		}
		*p.dst = f
	}
	return v, errs
}
