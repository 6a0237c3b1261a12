package booking

type Status string

const (
	// StatusConfirmed is both the initial and terminal state of a successful
	// commit; there is no pending step.
	StatusConfirmed Status = "confirmed"

	// StatusCancelled is admitted by the transition table so a cancellation
	// path can be added without touching the state machine. No operation
	// produces it yet.
	StatusCancelled Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusConfirmed: {StatusCancelled: true},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// CountsForOverlap reports whether a reservation in this state occupies its
// interval. Cancelled reservations leave the overlap set.
func (s Status) CountsForOverlap() bool {
	return s == StatusConfirmed
}
