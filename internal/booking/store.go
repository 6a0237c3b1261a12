package booking

import "context"

// Store is the single synchronization point for reservation writes.
//
// TryCommit must be atomic with respect to the overlap invariant: for any
// property, no two concurrent callers may both succeed with overlapping
// intervals, however many race. The advisory ConfirmedIntervals read is never
// the authority; conflict is re-evaluated at commit time.
type Store interface {
	CreateAgency(ctx context.Context, a Agency) (Agency, error)
	GetAgency(ctx context.Context, id string) (Agency, error)
	AgencyByOwner(ctx context.Context, ownerUserID string) (Agency, error)

	CreateProperty(ctx context.Context, p Property) (Property, error)
	GetProperty(ctx context.Context, id string) (Property, error)
	ListAvailableProperties(ctx context.Context) ([]Property, error)
	ListAgencyProperties(ctx context.Context, agencyID string) ([]Property, error)
	// ToggleAvailability flips the manual listing flag and returns the new
	// value. Existing reservations are untouched.
	ToggleAvailability(ctx context.Context, propertyID string) (bool, error)

	// ConfirmedIntervals returns the intervals of all reservations on the
	// property that count for overlap. Pure read.
	ConfirmedIntervals(ctx context.Context, propertyID string) ([]Interval, error)

	// TryCommit persists the candidate if and only if no confirmed
	// reservation on the same property overlaps it, assigning id, status and
	// creation timestamp. Returns *ConflictError naming the blocking
	// interval(s) on collision, ErrTimeout if the caller's deadline expired
	// with the outcome unknown.
	TryCommit(ctx context.Context, candidate Reservation) (Reservation, error)

	GetReservation(ctx context.Context, id string) (Reservation, error)
	// ListUserReservations and ListAgencyReservations return newest first.
	ListUserReservations(ctx context.Context, userID string) ([]Reservation, error)
	ListAgencyReservations(ctx context.Context, agencyID string) ([]Reservation, error)

	// MarkPaid records collection of the money and the method label used.
	MarkPaid(ctx context.Context, reservationID, method string) (Reservation, error)
}
