package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeRange = errors.New("start time must be before end time")

type TimeRange struct {
	start time.Time
	end   time.Time
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{start: start, end: end}, nil
}

func MustTimeRange(start, end time.Time) TimeRange {
	r, err := NewTimeRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func (r TimeRange) Start() time.Time {
	return r.start
}

func (r TimeRange) End() time.Time {
	return r.end
}

func (r TimeRange) Duration() time.Duration {
	return r.end.Sub(r.start)
}

// Overlaps uses half-open interval semantics: [a,b) and [b,c) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

func (r TimeRange) Contains(other TimeRange) bool {
	return !other.start.Before(r.start) && !other.end.After(r.end)
}

// ExtendedBy returns the range with d appended after the end. Used to enforce
// the grace buffer between consecutive bookings.
func (r TimeRange) ExtendedBy(d time.Duration) TimeRange {
	if d <= 0 {
		return r
	}
	return TimeRange{start: r.start, end: r.end.Add(d)}
}

// ToTstzrange renders the range in PostgreSQL tstzrange literal form.
func (r TimeRange) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", r.start.Format(time.RFC3339), r.end.Format(time.RFC3339))
}
