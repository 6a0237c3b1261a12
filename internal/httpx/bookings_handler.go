package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
	"github.com/fajarnugraha/go-rent-reservations/internal/notifier"
	"github.com/fajarnugraha/go-rent-reservations/internal/redisx"
)

type BookingsHandler struct {
	Svc            *booking.Service
	Redis          *redis.Client // optional read cache for GET by id
	Currency       string
	WhatsAppNumber string
}

type checkAvailabilityReq struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

type createBookingReq struct {
	PropertyID    string `json:"property_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Guests        int    `json:"guests"`
	PaymentMethod string `json:"payment_method"`
}

type payReq struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *BookingsHandler) Register(r *chi.Mux) {
	r.Route("/api/bookings", func(r chi.Router) {
		r.Post("/check-availability", h.checkAvailability)
		r.Get("/{id}", h.getBooking)
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/", h.createBooking)
			r.Get("/user", h.userBookings)
			r.Get("/agency", h.agencyDashboard)
			r.Get("/{id}/whatsapp", h.whatsappLink)
			r.Post("/{id}/pay", h.markPaid)
		})
	})
}

func (h *BookingsHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var req checkAvailabilityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "invalid json"})
		return
	}
	iv, err := booking.ParseInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	available, err := h.Svc.CheckAvailability(ctx, req.PropertyID, iv)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *BookingsHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "invalid json"})
		return
	}
	iv, err := booking.ParseInterval(req.CheckIn, req.CheckOut)
	if err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Svc.CreateReservation(ctx, booking.CreateReservationInput{
		PropertyID:    req.PropertyID,
		UserID:        userID(r),
		Interval:      iv,
		Guests:        req.Guests,
		PaymentMethod: req.PaymentMethod,
		TraceID:       r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	body := toBookingJSON(detail)
	h.cacheBooking(ctx, body)
	writeJSON(w, http.StatusCreated, body)
}

func (h *BookingsHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first, store as fallback
	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyReservation, id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	detail, err := h.Svc.GetReservation(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	body := toBookingJSON(detail)
	h.cacheBooking(ctx, body)
	writeJSON(w, http.StatusOK, body)
}

func (h *BookingsHandler) cacheBooking(ctx context.Context, body bookingJSON) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(body)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyReservation, body.ID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLReservationCache).Err()
}

func (h *BookingsHandler) userBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	details, err := h.Svc.UserReservations(ctx, userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]bookingJSON, 0, len(details))
	for _, d := range details {
		out = append(out, toBookingJSON(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

func (h *BookingsHandler) agencyDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	agency, sum, err := h.Svc.AgencySummaryByOwner(ctx, userID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]bookingJSON, 0, len(sum.Reservations))
	for _, d := range sum.Reservations {
		out = append(out, toBookingJSON(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agency_id":           agency.ID,
		"total_bookings":      sum.TotalBookings,
		"total_revenue_cents": sum.TotalRevenueCents,
		"bookings":            out,
	})
}

func (h *BookingsHandler) whatsappLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.ConfirmedPayloadFor(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	number := p.AgencyPhone
	if number == "" {
		number = h.WhatsAppNumber
	}
	link := notifier.WhatsAppLink(number, notifier.WhatsAppText(p, h.Currency))
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

func (h *BookingsHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req payReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // method optional
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	detail, err := h.Svc.MarkPaid(ctx, id, req.PaymentMethod)
	if err != nil {
		writeErr(w, err)
		return
	}
	body := toBookingJSON(detail)
	h.cacheBooking(ctx, body)
	writeJSON(w, http.StatusOK, body)
}
