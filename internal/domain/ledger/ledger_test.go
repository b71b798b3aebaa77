//go:build unit

package ledger_test

import (
	"testing"
	"time"

	"beautybook/internal/domain/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	earnRate = decimal.NewFromFloat(0.025)
	one      = decimal.NewFromInt(1)
	two      = decimal.NewFromInt(2)

	delay    = 7 * 24 * time.Hour
	lifetime = 365 * 24 * time.Hour
)

func TestCreditable(t *testing.T) {
	t.Run("capped amount", func(t *testing.T) {
		// floor(300000 * 0.025) for a 400000 settlement capped at 300000
		assert.Equal(t, int64(7500), ledger.Creditable(400000, 300000, earnRate, one))
	})

	t.Run("influencer multiplier", func(t *testing.T) {
		assert.Equal(t, int64(15000), ledger.Creditable(400000, 300000, earnRate, two))
	})

	t.Run("below cap", func(t *testing.T) {
		assert.Equal(t, int64(2500), ledger.Creditable(100000, 300000, earnRate, one))
	})

	t.Run("floor on fractional result", func(t *testing.T) {
		// 1990 * 0.025 = 49.75
		assert.Equal(t, int64(49), ledger.Creditable(1990, 300000, earnRate, one))
	})

	t.Run("zero and negative amounts", func(t *testing.T) {
		assert.Equal(t, int64(0), ledger.Creditable(0, 300000, earnRate, one))
		assert.Equal(t, int64(0), ledger.Creditable(-100, 300000, earnRate, one))
	})
}

func earnedAt(t *testing.T, userID uuid.UUID, points int64, completedAt time.Time) *ledger.Entry {
	t.Helper()
	e, err := ledger.NewEarnEntry(userID, uuid.New(), points, completedAt, delay, lifetime)
	require.NoError(t, err)
	return e
}

func TestPlanConsumption(t *testing.T) {
	userID := uuid.New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := t0.Add(30 * 24 * time.Hour) // all three credits available

	oldest := earnedAt(t, userID, 1000, t0)
	middle := earnedAt(t, userID, 500, t0.Add(24*time.Hour))
	newest := earnedAt(t, userID, 800, t0.Add(48*time.Hour))
	entries := []*ledger.Entry{newest, oldest, middle} // deliberately unordered

	t.Run("oldest eligible first, decrements sum to amount", func(t *testing.T) {
		plan, err := ledger.PlanConsumption(entries, 1200, now)
		require.NoError(t, err)
		require.Len(t, plan, 2)

		assert.Equal(t, oldest.ID(), plan[0].Entry.ID())
		assert.Equal(t, int64(1000), plan[0].Amount)
		assert.Equal(t, middle.ID(), plan[1].Entry.ID())
		assert.Equal(t, int64(200), plan[1].Amount)

		var total int64
		for _, d := range plan {
			total += d.Amount
		}
		assert.Equal(t, int64(1200), total)
	})

	t.Run("insufficient points mutates nothing", func(t *testing.T) {
		_, err := ledger.PlanConsumption(entries, 5000, now)
		require.ErrorIs(t, err, ledger.ErrInsufficientPoints)

		assert.Equal(t, int64(1000), oldest.RemainingUnconsumed())
		assert.Equal(t, int64(500), middle.RemainingUnconsumed())
		assert.Equal(t, int64(800), newest.RemainingUnconsumed())
	})

	t.Run("delayed credit is not eligible", func(t *testing.T) {
		early := t0.Add(3 * 24 * time.Hour) // inside the 7-day delay
		_, err := ledger.PlanConsumption(entries, 1, early)
		require.ErrorIs(t, err, ledger.ErrInsufficientPoints)
	})

	t.Run("expired credit is not eligible", func(t *testing.T) {
		late := t0.Add(lifetime)
		_, err := ledger.PlanConsumption([]*ledger.Entry{oldest}, 1, late)
		require.ErrorIs(t, err, ledger.ErrInsufficientPoints)
	})

	t.Run("apply decrements and never goes negative", func(t *testing.T) {
		plan, err := ledger.PlanConsumption(entries, 1200, now)
		require.NoError(t, err)
		require.NoError(t, ledger.Apply(plan))

		assert.Equal(t, int64(0), oldest.RemainingUnconsumed())
		assert.Equal(t, int64(300), middle.RemainingUnconsumed())
		assert.Equal(t, int64(800), newest.RemainingUnconsumed())

		// spend the rest, then nothing is left
		plan, err = ledger.PlanConsumption(entries, 1100, now)
		require.NoError(t, err)
		require.NoError(t, ledger.Apply(plan))

		_, err = ledger.PlanConsumption(entries, 1, now)
		require.ErrorIs(t, err, ledger.ErrInsufficientPoints)
	})

	t.Run("zero or negative spend rejected", func(t *testing.T) {
		_, err := ledger.PlanConsumption(entries, 0, now)
		require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
	})

	t.Run("tie on availableFrom breaks by createdAt", func(t *testing.T) {
		a, err := ledger.NewAdjustmentEntry(userID, 100, t0, t0.Add(lifetime), t0)
		require.NoError(t, err)
		b, err := ledger.NewAdjustmentEntry(userID, 100, t0, t0.Add(lifetime), t0.Add(time.Second))
		require.NoError(t, err)

		plan, err := ledger.PlanConsumption([]*ledger.Entry{b, a}, 150, t0.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, a.ID(), plan[0].Entry.ID())
		assert.Equal(t, b.ID(), plan[1].Entry.ID())
	})
}

func TestBalance(t *testing.T) {
	userID := uuid.New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	available := earnedAt(t, userID, 1000, t0)
	pending := earnedAt(t, userID, 700, t0.Add(28*24*time.Hour))

	now := t0.Add(10 * 24 * time.Hour)
	entries := []*ledger.Entry{available, pending}

	t.Run("available versus pending split", func(t *testing.T) {
		b := ledger.BalanceOf(entries, now)
		assert.Equal(t, int64(1000), b.Available)
		assert.Equal(t, int64(700), b.Pending)
	})

	t.Run("spend reduces available only", func(t *testing.T) {
		plan, err := ledger.PlanConsumption(entries, 400, now)
		require.NoError(t, err)
		require.NoError(t, ledger.Apply(plan))

		b := ledger.BalanceOf(entries, now)
		assert.Equal(t, int64(600), b.Available)
		assert.Equal(t, int64(700), b.Pending)
	})

	t.Run("expiry reversal keeps the fold consistent", func(t *testing.T) {
		lapsed := t0.Add(lifetime)
		require.True(t, available.LapsedAt(lapsed))

		expire, err := ledger.NewExpireEntry(available, lapsed)
		require.NoError(t, err)
		assert.Equal(t, int64(-600), expire.Amount())
		require.NotNil(t, expire.SourceEntryID())
		assert.Equal(t, available.ID(), *expire.SourceEntryID())

		use, err := ledger.NewUseEntry(userID, 400, nil, now)
		require.NoError(t, err)

		all := []*ledger.Entry{available, pending, use, expire}
		// 1000 + 700 - 400 - 600 = 700, exactly the pending remainder
		assert.Equal(t, int64(700), ledger.SignedSum(all))

		b := ledger.BalanceOf(all, lapsed.Add(time.Hour))
		assert.GreaterOrEqual(t, b.Available, int64(0))
	})

	t.Run("balance never negative across operations", func(t *testing.T) {
		b := ledger.BalanceOf(entries, t0.Add(2*lifetime))
		assert.GreaterOrEqual(t, b.Available, int64(0))
		assert.GreaterOrEqual(t, b.Pending, int64(0))
	})
}

func TestEntryGuards(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("credits must be positive", func(t *testing.T) {
		_, err := ledger.NewEarnEntry(uuid.New(), uuid.New(), 0, t0, delay, lifetime)
		require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
	})

	t.Run("expire entry requires a remainder", func(t *testing.T) {
		credit := earnedAt(t, uuid.New(), 100, t0)
		plan, err := ledger.PlanConsumption([]*ledger.Entry{credit}, 100, t0.Add(delay))
		require.NoError(t, err)
		require.NoError(t, ledger.Apply(plan))

		_, err = ledger.NewExpireEntry(credit, t0.Add(lifetime))
		require.ErrorIs(t, err, ledger.ErrNonPositiveAmount)
	})

	t.Run("use entries are negative rows", func(t *testing.T) {
		use, err := ledger.NewUseEntry(uuid.New(), 250, nil, t0)
		require.NoError(t, err)
		assert.Equal(t, int64(-250), use.Amount())
		assert.False(t, use.SpendableAt(t0))
	})
}
