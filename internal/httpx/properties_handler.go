package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
)

type PropertiesHandler struct {
	Svc *booking.Service
}

type createPropertyReq struct {
	Title            string `json:"title"`
	Address          string `json:"address"`
	ImageURL         string `json:"image_url"`
	NightlyRateCents int    `json:"nightly_rate_cents"`
}

type toggleReq struct {
	PropertyID string `json:"property_id"`
}

func (h *PropertiesHandler) Register(r *chi.Mux) {
	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", h.listAvailable)
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/", h.create)
			r.Get("/owner", h.listOwner)
			r.Post("/toggle-availability", h.toggle)
		})
	})
}

func (h *PropertiesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPropertyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// New listings always belong to the caller's agency.
	agency, err := h.Svc.Store.AgencyByOwner(ctx, userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Svc.CreateProperty(ctx, booking.Property{
		AgencyID:         agency.ID,
		Title:            req.Title,
		Address:          req.Address,
		ImageURL:         req.ImageURL,
		NightlyRateCents: req.NightlyRateCents,
		Available:        true,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyJSON(p))
}

func (h *PropertiesHandler) listAvailable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Svc.AvailableProperties(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyList(ps)})
}

func (h *PropertiesHandler) listOwner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	agency, err := h.Svc.Store.AgencyByOwner(ctx, userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	ps, err := h.Svc.AgencyProperties(ctx, agency.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": toPropertyList(ps)})
}

func (h *PropertiesHandler) toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	available, err := h.Svc.ToggleAvailability(ctx, req.PropertyID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"property_id": req.PropertyID, "available": available})
}

func toPropertyList(ps []booking.Property) []propertyJSON {
	out := make([]propertyJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPropertyJSON(p))
	}
	return out
}
