package booking

import "time"

// DefaultPaymentMethod is the label recorded when the requester picked none.
const DefaultPaymentMethod = "Pay at Check-in"

type Agency struct {
	ID          string
	OwnerUserID string
	Name        string
	Email       string
	Phone       string
	CreatedAt   time.Time
}

type Property struct {
	ID               string
	AgencyID         string
	Title            string
	Address          string
	ImageURL         string
	NightlyRateCents int
	// Available is the manual listing toggle, independent of reservations.
	Available bool
	CreatedAt time.Time
}

type Reservation struct {
	ID         string
	PropertyID string
	// AgencyID is denormalized from the property at creation time: it names
	// who is entitled to the revenue for this stay and must not change even
	// if the property later changes owners.
	AgencyID      string
	UserID        string
	Guests        int
	Interval      Interval
	TotalCents    int
	Status        Status
	IsPaid        bool
	PaymentMethod string
	CreatedAt     time.Time
}

// PropertySummary is the slice of a property exposed alongside a reservation.
type PropertySummary struct {
	ID               string
	Title            string
	Address          string
	ImageURL         string
	NightlyRateCents int
}

func (p Property) Summary() PropertySummary {
	return PropertySummary{
		ID:               p.ID,
		Title:            p.Title,
		Address:          p.Address,
		ImageURL:         p.ImageURL,
		NightlyRateCents: p.NightlyRateCents,
	}
}

// ReservationDetail is a reservation joined with its property summary, the
// shape collaborators consume.
type ReservationDetail struct {
	Reservation
	Property PropertySummary
}
