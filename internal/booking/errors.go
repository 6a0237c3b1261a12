package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrTimeout means the outcome of a commit is unknown. Callers must
	// re-query before retrying; this is never an implicit success or failure.
	ErrTimeout = errors.New("deadline exceeded, outcome unknown")

	// ErrStoreUnavailable marks infrastructure-level failures, safe to retry
	// with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is a business rejection, not a transient failure: the
// requested interval collides with committed reservations. Blocking carries
// the colliding intervals only, never the other requesters' identities.
type ConflictError struct {
	PropertyID string
	Blocking   []Interval
}

func (e *ConflictError) Error() string {
	ivs := make([]string, 0, len(e.Blocking))
	for _, iv := range e.Blocking {
		ivs = append(ivs, iv.String())
	}
	return fmt.Sprintf("schedule conflict on property %s: blocked by %s", e.PropertyID, strings.Join(ivs, ", "))
}
