package schedule

import (
	"iter"
	"time"
)

// AvailabilityParams describes everything needed to enumerate open slots for
// one shop on one date. Busy holds every interval already claimed by a hold
// or a live (requested/confirmed) reservation.
type AvailabilityParams struct {
	Hours       TimeRange // operating window for the date, shop-local
	Granularity time.Duration
	Duration    time.Duration // total duration of the requested services
	Buffer      time.Duration // grace appended after each busy interval
	Busy        []TimeRange
	Now         time.Time
	AdvanceDays int
}

// Candidates yields candidate slots lazily, in ascending start order. The
// sequence is finite (bounded by the operating window) and restartable:
// ranging over it twice yields the same slots.
func Candidates(p AvailabilityParams) iter.Seq[TimeRange] {
	return func(yield func(TimeRange) bool) {
		if p.Granularity <= 0 || p.Duration <= 0 {
			return
		}

		horizon := p.Now.AddDate(0, 0, p.AdvanceDays)

		for start := p.Hours.Start(); ; start = start.Add(p.Granularity) {
			end := start.Add(p.Duration)
			if end.After(p.Hours.End()) {
				return
			}

			candidate := TimeRange{start: start, end: end}
			if !p.admits(candidate, horizon) {
				continue
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

func (p AvailabilityParams) admits(candidate TimeRange, horizon time.Time) bool {
	if !candidate.Start().After(p.Now) {
		return false
	}
	if candidate.Start().After(horizon) {
		return false
	}
	for _, busy := range p.Busy {
		if busy.ExtendedBy(p.Buffer).Overlaps(candidate) {
			return false
		}
	}
	return true
}

// CollectCandidates drains the sequence into a slice, mainly for handlers and
// tests that want the whole day at once.
func CollectCandidates(p AvailabilityParams) []TimeRange {
	var out []TimeRange
	for slot := range Candidates(p) {
		out = append(out, slot)
	}
	return out
}

// OperatingWindow builds the shop-local operating range for a date from
// opening and closing clock times (minutes from midnight).
func OperatingWindow(date time.Time, openMin, closeMin int, loc *time.Location) (TimeRange, error) {
	year, month, day := date.In(loc).Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return NewTimeRange(
		midnight.Add(time.Duration(openMin)*time.Minute),
		midnight.Add(time.Duration(closeMin)*time.Minute),
	)
}
