package booking

import (
	"encoding/json"
	"time"
)

const (
	EventReservationConfirmed = "ReservationConfirmed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // reservation_id
	Payload       json.RawMessage `json:"payload"`
}

// ReservationConfirmedPayload carries everything a notifier needs to render
// the confirmation message without querying the engine back: booking id,
// property summary, agency contact, interval, price.
type ReservationConfirmedPayload struct {
	ReservationID   string `json:"reservation_id"`
	PropertyID      string `json:"property_id"`
	PropertyTitle   string `json:"property_title"`
	PropertyAddress string `json:"property_address"`
	AgencyID        string `json:"agency_id"`
	AgencyName      string `json:"agency_name"`
	AgencyEmail     string `json:"agency_email"`
	AgencyPhone     string `json:"agency_phone"`
	UserID          string `json:"user_id"`
	CheckIn         string `json:"check_in"`  // YYYY-MM-DD
	CheckOut        string `json:"check_out"` // YYYY-MM-DD
	Nights          int    `json:"nights"`
	Guests          int    `json:"guests"`
	TotalCents      int    `json:"total_cents"`
	PaymentMethod   string `json:"payment_method"`
}

func ConfirmedPayload(r Reservation, p Property, a Agency) ReservationConfirmedPayload {
	return ReservationConfirmedPayload{
		ReservationID:   r.ID,
		PropertyID:      p.ID,
		PropertyTitle:   p.Title,
		PropertyAddress: p.Address,
		AgencyID:        a.ID,
		AgencyName:      a.Name,
		AgencyEmail:     a.Email,
		AgencyPhone:     a.Phone,
		UserID:          r.UserID,
		CheckIn:         r.Interval.CheckIn.Format(DateLayout),
		CheckOut:        r.Interval.CheckOut.Format(DateLayout),
		Nights:          r.Interval.Nights(),
		Guests:          r.Guests,
		TotalCents:      r.TotalCents,
		PaymentMethod:   r.PaymentMethod,
	}
}
