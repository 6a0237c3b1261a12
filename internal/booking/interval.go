package booking

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates. No timezone component:
// the overlap predicate is defined on calendar dates, and a tz-sensitive
// midnight would shift check-in/check-out by a day depending on the client.
const DateLayout = "2006-01-02"

// Interval is a half-open date range [CheckIn, CheckOut). Back-to-back stays
// (one's check-out equals another's check-in) do not overlap, so a same-day
// turnover is allowed.
type Interval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewInterval normalizes both dates to UTC midnight and requires at least
// one night.
func NewInterval(checkIn, checkOut time.Time) (Interval, error) {
	iv := Interval{CheckIn: midnightUTC(checkIn), CheckOut: midnightUTC(checkOut)}
	if !iv.CheckIn.Before(iv.CheckOut) {
		return Interval{}, &ValidationError{
			Field:  "check_out",
			Reason: "check-out must be after check-in",
		}
	}
	return iv, nil
}

// ParseInterval builds an Interval from two YYYY-MM-DD strings.
func ParseInterval(checkIn, checkOut string) (Interval, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Interval{}, &ValidationError{Field: "check_in", Reason: "expected YYYY-MM-DD"}
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Interval{}, &ValidationError{Field: "check_out", Reason: "expected YYYY-MM-DD"}
	}
	return NewInterval(in, out)
}

// Nights is the number of whole days between check-in and check-out.
// Always >= 1 for an Interval built via NewInterval.
func (iv Interval) Nights() int {
	return int(iv.CheckOut.Sub(iv.CheckIn) / (24 * time.Hour))
}

// Overlaps reports whether two half-open intervals share at least one night:
// a.start < b.end && b.start < a.end.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(iv.CheckOut)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.CheckIn.Format(DateLayout), iv.CheckOut.Format(DateLayout))
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
