package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fajarnugraha/go-rent-reservations/internal/booking"
)

type errBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

type intervalJSON struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

func toIntervalJSON(iv booking.Interval) intervalJSON {
	return intervalJSON{
		CheckIn:  iv.CheckIn.Format(booking.DateLayout),
		CheckOut: iv.CheckOut.Format(booking.DateLayout),
	}
}

type propertyJSON struct {
	ID               string    `json:"id"`
	AgencyID         string    `json:"agency_id,omitempty"`
	Title            string    `json:"title"`
	Address          string    `json:"address"`
	ImageURL         string    `json:"image_url"`
	NightlyRateCents int       `json:"nightly_rate_cents"`
	Available        bool      `json:"available,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

type bookingJSON struct {
	ID            string       `json:"id"`
	Property      propertyJSON `json:"property"`
	AgencyID      string       `json:"agency_id"`
	UserID        string       `json:"user_id"`
	CheckIn       string       `json:"check_in"`
	CheckOut      string       `json:"check_out"`
	Guests        int          `json:"guests"`
	TotalCents    int          `json:"total_cents"`
	Status        string       `json:"status"`
	IsPaid        bool         `json:"is_paid"`
	PaymentMethod string       `json:"payment_method"`
	CreatedAt     time.Time    `json:"created_at"`
}

func toBookingJSON(d booking.ReservationDetail) bookingJSON {
	return bookingJSON{
		ID: d.ID,
		Property: propertyJSON{
			ID:               d.Property.ID,
			Title:            d.Property.Title,
			Address:          d.Property.Address,
			ImageURL:         d.Property.ImageURL,
			NightlyRateCents: d.Property.NightlyRateCents,
		},
		AgencyID:      d.AgencyID,
		UserID:        d.UserID,
		CheckIn:       d.Interval.CheckIn.Format(booking.DateLayout),
		CheckOut:      d.Interval.CheckOut.Format(booking.DateLayout),
		Guests:        d.Guests,
		TotalCents:    d.TotalCents,
		Status:        string(d.Status),
		IsPaid:        d.IsPaid,
		PaymentMethod: d.PaymentMethod,
		CreatedAt:     d.CreatedAt,
	}
}

func toPropertyJSON(p booking.Property) propertyJSON {
	return propertyJSON{
		ID:               p.ID,
		AgencyID:         p.AgencyID,
		Title:            p.Title,
		Address:          p.Address,
		ImageURL:         p.ImageURL,
		NightlyRateCents: p.NightlyRateCents,
		Available:        p.Available,
		CreatedAt:        p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the engine's error taxonomy onto HTTP. Conflict detail names
// the blocking interval(s) only; the colliding requester stays private.
func writeErr(w http.ResponseWriter, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errBody{
			Error:  verr.Error(),
			Detail: map[string]string{"field": verr.Field},
		})
		return
	}
	var cerr *booking.ConflictError
	if errors.As(err, &cerr) {
		blocking := make([]intervalJSON, 0, len(cerr.Blocking))
		for _, iv := range cerr.Blocking {
			blocking = append(blocking, toIntervalJSON(iv))
		}
		writeJSON(w, http.StatusConflict, errBody{
			Error:  "property not available for selected dates",
			Detail: map[string]any{"blocking": blocking},
		})
		return
	}
	switch {
	case errors.Is(err, booking.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{Error: "not found"})
	case errors.Is(err, booking.ErrTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errBody{Error: "commit outcome unknown, re-query before retrying"})
	case errors.Is(err, booking.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errBody{Error: "store unavailable, retry with backoff"})
	default:
		writeJSON(w, http.StatusInternalServerError, errBody{Error: err.Error()})
	}
}
