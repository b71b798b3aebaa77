//go:build unit

package schedule_test

import (
	"testing"
	"time"

	"beautybook/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

func at(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 3, 14, hour, min, 0, 0, seoul)
}

func TestTimeRange(t *testing.T) {
	t.Run("rejects inverted and empty ranges", func(t *testing.T) {
		_, err := schedule.NewTimeRange(at(t, 11, 0), at(t, 10, 0))
		require.ErrorIs(t, err, schedule.ErrInvalidTimeRange)

		_, err = schedule.NewTimeRange(at(t, 10, 0), at(t, 10, 0))
		require.ErrorIs(t, err, schedule.ErrInvalidTimeRange)
	})

	t.Run("overlap is half-open", func(t *testing.T) {
		a := schedule.MustTimeRange(at(t, 10, 0), at(t, 11, 0))
		b := schedule.MustTimeRange(at(t, 11, 0), at(t, 12, 0))
		c := schedule.MustTimeRange(at(t, 10, 30), at(t, 11, 30))

		assert.False(t, a.Overlaps(b))
		assert.False(t, b.Overlaps(a))
		assert.True(t, a.Overlaps(c))
		assert.True(t, c.Overlaps(b))
	})

	t.Run("extended range picks up the grace buffer", func(t *testing.T) {
		a := schedule.MustTimeRange(at(t, 10, 0), at(t, 11, 0))
		next := schedule.MustTimeRange(at(t, 11, 0), at(t, 12, 0))

		assert.False(t, a.Overlaps(next))
		assert.True(t, a.ExtendedBy(15*time.Minute).Overlaps(next))
	})
}

func TestCandidates(t *testing.T) {
	hours := schedule.MustTimeRange(at(t, 10, 0), at(t, 13, 0))

	base := schedule.AvailabilityParams{
		Hours:       hours,
		Granularity: 30 * time.Minute,
		Duration:    time.Hour,
		Buffer:      15 * time.Minute,
		Now:         at(t, 8, 0),
		AdvanceDays: 30,
	}

	t.Run("open day yields every grid start that fits", func(t *testing.T) {
		slots := schedule.CollectCandidates(base)
		require.Len(t, slots, 5)
		assert.Equal(t, at(t, 10, 0), slots[0].Start())
		assert.Equal(t, at(t, 12, 0), slots[4].Start())
		// every candidate ends within operating hours
		for _, s := range slots {
			assert.False(t, s.End().After(hours.End()))
		}
	})

	t.Run("busy interval plus buffer is excluded", func(t *testing.T) {
		p := base
		p.Busy = []schedule.TimeRange{schedule.MustTimeRange(at(t, 10, 0), at(t, 11, 0))}

		slots := schedule.CollectCandidates(p)
		// 10:00-11:00 busy, buffered to 11:15 -> first open start is 11:30
		require.NotEmpty(t, slots)
		assert.Equal(t, at(t, 11, 30), slots[0].Start())
		for _, s := range slots {
			assert.False(t, s.Start().Before(at(t, 11, 15)))
		}
	})

	t.Run("past starts are excluded", func(t *testing.T) {
		p := base
		p.Now = at(t, 11, 0)

		slots := schedule.CollectCandidates(p)
		require.NotEmpty(t, slots)
		assert.Equal(t, at(t, 11, 30), slots[0].Start())
	})

	t.Run("advance window bounds candidates", func(t *testing.T) {
		p := base
		p.Now = at(t, 8, 0).AddDate(0, 0, -31)

		slots := schedule.CollectCandidates(p)
		assert.Empty(t, slots)
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		first := schedule.CollectCandidates(base)
		second := schedule.CollectCandidates(base)
		assert.Equal(t, first, second)
	})

	t.Run("early break stops iteration cleanly", func(t *testing.T) {
		var got []schedule.TimeRange
		for slot := range schedule.Candidates(base) {
			got = append(got, slot)
			if len(got) == 2 {
				break
			}
		}
		require.Len(t, got, 2)
		assert.Equal(t, at(t, 10, 0), got[0].Start())
		assert.Equal(t, at(t, 10, 30), got[1].Start())
	})
}

func TestOperatingWindow(t *testing.T) {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	window, err := schedule.OperatingWindow(date, 10*60, 19*60, seoul)
	require.NoError(t, err)

	assert.Equal(t, 10, window.Start().In(seoul).Hour())
	assert.Equal(t, 19, window.End().In(seoul).Hour())
	assert.Equal(t, 9*time.Hour, window.Duration())
}
