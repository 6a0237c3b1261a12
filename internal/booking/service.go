package booking

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/fajarnugraha/go-rent-reservations/internal/kafka"
)

// EventPublisher is what the service needs from the Kafka producer.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service owns the reservation lifecycle: validation -> advisory conflict
// check -> atomic commit via the Store -> best-effort notification payload.
// The Store handle is injected at construction; there are no ambient globals.
type Service struct {
	Store       Store
	Publisher   EventPublisher // nil disables notification events
	ServiceName string
}

type CreateReservationInput struct {
	PropertyID    string
	UserID        string
	Interval      Interval
	Guests        int
	PaymentMethod string
	TraceID       string
}

// Summary rolls up an agency's reservations. Revenue means collected money:
// unpaid reservations count toward TotalBookings but not TotalRevenueCents.
type Summary struct {
	TotalBookings     int
	TotalRevenueCents int
	Reservations      []ReservationDetail // newest first, for display
}

// CheckAvailability is the advisory read: true iff no confirmed reservation
// overlaps the candidate interval. No side effects; never the commit
// authority.
func (s *Service) CheckAvailability(ctx context.Context, propertyID string, iv Interval) (bool, error) {
	if propertyID == "" {
		return false, &ValidationError{Field: "property_id", Reason: "required"}
	}
	existing, err := s.Store.ConfirmedIntervals(ctx, propertyID)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.Overlaps(iv) {
			return false, nil
		}
	}
	return true, nil
}

func (s *Service) CreateReservation(ctx context.Context, in CreateReservationInput) (ReservationDetail, error) {
	if in.PropertyID == "" {
		return ReservationDetail{}, &ValidationError{Field: "property_id", Reason: "required"}
	}
	if in.UserID == "" {
		return ReservationDetail{}, &ValidationError{Field: "user_id", Reason: "required"}
	}
	if in.Guests < 1 {
		return ReservationDetail{}, &ValidationError{Field: "guests", Reason: "must be at least 1"}
	}
	if in.Interval.Nights() < 1 {
		return ReservationDetail{}, &ValidationError{Field: "check_out", Reason: "check-out must be after check-in"}
	}

	property, err := s.Store.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return ReservationDetail{}, err
	}
	if !property.Available {
		return ReservationDetail{}, &ValidationError{Field: "property_id", Reason: "property is not accepting bookings"}
	}

	// Advisory fast-fail so obviously blocked requests get a conflict before
	// any further work. The store re-validates at commit time regardless.
	if ok, err := s.CheckAvailability(ctx, in.PropertyID, in.Interval); err != nil {
		return ReservationDetail{}, err
	} else if !ok {
		existing, err := s.Store.ConfirmedIntervals(ctx, in.PropertyID)
		if err != nil {
			return ReservationDetail{}, err
		}
		return ReservationDetail{}, conflictAgainst(in.PropertyID, in.Interval, existing)
	}

	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	candidate := Reservation{
		PropertyID:    property.ID,
		AgencyID:      property.AgencyID, // denormalized: revenue entitlement at booking time
		UserID:        in.UserID,
		Guests:        in.Guests,
		Interval:      in.Interval,
		TotalCents:    TotalCents(property.NightlyRateCents, in.Interval),
		IsPaid:        false,
		PaymentMethod: method,
	}

	committed, err := s.Store.TryCommit(ctx, candidate)
	if err != nil {
		return ReservationDetail{}, err
	}

	// The reservation is the durable fact; the notification is best-effort.
	// Publish failures are logged inside the producer and never reach here.
	s.publishConfirmed(ctx, committed, property, in.TraceID)

	return ReservationDetail{Reservation: committed, Property: property.Summary()}, nil
}

func (s *Service) publishConfirmed(ctx context.Context, r Reservation, p Property, traceID string) {
	if s.Publisher == nil {
		return
	}
	agency, err := s.Store.GetAgency(ctx, r.AgencyID)
	if err != nil {
		// Payload goes out without contact details rather than not at all.
		log.Printf("notification: agency %s lookup failed: %v", r.AgencyID, err)
		agency = Agency{ID: r.AgencyID}
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventReservationConfirmed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		TraceID:       traceID,
		CorrelationID: r.ID,
		Payload:       kafkax.MustMarshal(ConfirmedPayload(r, p, agency)),
	}
	s.Publisher.Publish(PartitionKey(r.PropertyID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventReservationConfirmed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// ConfirmedPayloadFor rebuilds the notification payload for an existing
// reservation, for collaborators that need it synchronously (WhatsApp link).
func (s *Service) ConfirmedPayloadFor(ctx context.Context, reservationID string) (ReservationConfirmedPayload, error) {
	r, err := s.Store.GetReservation(ctx, reservationID)
	if err != nil {
		return ReservationConfirmedPayload{}, err
	}
	p, err := s.Store.GetProperty(ctx, r.PropertyID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ReservationConfirmedPayload{}, err
	}
	p.ID = r.PropertyID
	a, err := s.Store.GetAgency(ctx, r.AgencyID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ReservationConfirmedPayload{}, err
	}
	a.ID = r.AgencyID
	return ConfirmedPayload(r, p, a), nil
}

func (s *Service) GetReservation(ctx context.Context, id string) (ReservationDetail, error) {
	r, err := s.Store.GetReservation(ctx, id)
	if err != nil {
		return ReservationDetail{}, err
	}
	return s.attachProperty(ctx, r)
}

func (s *Service) UserReservations(ctx context.Context, userID string) ([]ReservationDetail, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}
	rs, err := s.Store.ListUserReservations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachProperties(ctx, rs)
}

// AgencySummary is a pure fold over the agency's reservations; ordering only
// affects the Reservations slice, never the aggregates.
func (s *Service) AgencySummary(ctx context.Context, agencyID string) (Summary, error) {
	if agencyID == "" {
		return Summary{}, &ValidationError{Field: "agency_id", Reason: "required"}
	}
	rs, err := s.Store.ListAgencyReservations(ctx, agencyID)
	if err != nil {
		return Summary{}, err
	}
	details, err := s.attachProperties(ctx, rs)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Reservations: details}
	for _, r := range rs {
		sum.TotalBookings++
		if r.IsPaid {
			sum.TotalRevenueCents += r.TotalCents
		}
	}
	return sum, nil
}

// AgencySummaryByOwner resolves the caller's agency, then summarizes it.
func (s *Service) AgencySummaryByOwner(ctx context.Context, ownerUserID string) (Agency, Summary, error) {
	agency, err := s.Store.AgencyByOwner(ctx, ownerUserID)
	if err != nil {
		return Agency{}, Summary{}, err
	}
	sum, err := s.AgencySummary(ctx, agency.ID)
	return agency, sum, err
}

func (s *Service) MarkPaid(ctx context.Context, reservationID, method string) (ReservationDetail, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = DefaultPaymentMethod
	}
	r, err := s.Store.MarkPaid(ctx, reservationID, method)
	if err != nil {
		return ReservationDetail{}, err
	}
	return s.attachProperty(ctx, r)
}

func (s *Service) CreateProperty(ctx context.Context, p Property) (Property, error) {
	if p.Title == "" {
		return Property{}, &ValidationError{Field: "title", Reason: "required"}
	}
	if p.AgencyID == "" {
		return Property{}, &ValidationError{Field: "agency_id", Reason: "required"}
	}
	if p.NightlyRateCents <= 0 {
		return Property{}, &ValidationError{Field: "nightly_rate_cents", Reason: "must be positive"}
	}
	return s.Store.CreateProperty(ctx, p)
}

func (s *Service) AvailableProperties(ctx context.Context) ([]Property, error) {
	return s.Store.ListAvailableProperties(ctx)
}

func (s *Service) AgencyProperties(ctx context.Context, agencyID string) ([]Property, error) {
	return s.Store.ListAgencyProperties(ctx, agencyID)
}

func (s *Service) ToggleAvailability(ctx context.Context, propertyID string) (bool, error) {
	if propertyID == "" {
		return false, &ValidationError{Field: "property_id", Reason: "required"}
	}
	return s.Store.ToggleAvailability(ctx, propertyID)
}

func (s *Service) attachProperty(ctx context.Context, r Reservation) (ReservationDetail, error) {
	p, err := s.Store.GetProperty(ctx, r.PropertyID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The reservation stands even if the property was since removed.
			return ReservationDetail{Reservation: r, Property: PropertySummary{ID: r.PropertyID}}, nil
		}
		return ReservationDetail{}, err
	}
	return ReservationDetail{Reservation: r, Property: p.Summary()}, nil
}

func (s *Service) attachProperties(ctx context.Context, rs []Reservation) ([]ReservationDetail, error) {
	out := make([]ReservationDetail, 0, len(rs))
	for _, r := range rs {
		d, err := s.attachProperty(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func conflictAgainst(propertyID string, iv Interval, existing []Interval) *ConflictError {
	var blocking []Interval
	for _, b := range existing {
		if b.Overlaps(iv) {
			blocking = append(blocking, b)
		}
	}
	return &ConflictError{PropertyID: propertyID, Blocking: blocking}
}
