//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/repository"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
	return loc
}()

type fakeRunner struct{}

func (fakeRunner) WithinTx(_ context.Context, fn func(tx db.DBTX) error) error { return fn(nil) }
func (fakeRunner) DB() db.DBTX                                                 { return nil }

type stubReservationReader struct {
	busy []schedule.TimeRange
}

func (f *stubReservationReader) FindByID(context.Context, db.DBTX, uuid.UUID) (*reservation.Reservation, error) {
	return nil, nil
}

func (f *stubReservationReader) FindByCustomer(context.Context, db.DBTX, uuid.UUID) ([]*reservation.Reservation, error) {
	return nil, nil
}

func (f *stubReservationReader) BusyRanges(context.Context, db.DBTX, uuid.UUID, schedule.TimeRange) ([]schedule.TimeRange, error) {
	return f.busy, nil
}

type fakeCatalogReader struct {
	shop     *repository.ShopSnapshot
	services []*repository.ServiceSnapshot
}

func (f *fakeCatalogReader) FindShop(context.Context, uuid.UUID) (*repository.ShopSnapshot, error) {
	return f.shop, nil
}

func (f *fakeCatalogReader) FindServices(context.Context, uuid.UUID, []uuid.UUID) ([]*repository.ServiceSnapshot, error) {
	return f.services, nil
}

type fakeHoldReader struct {
	held []schedule.TimeRange
}

func (f *fakeHoldReader) HeldRanges(context.Context, uuid.UUID, schedule.TimeRange) ([]schedule.TimeRange, error) {
	return f.held, nil
}

type fakeLedgerReader struct {
	entries []*ledger.Entry
}

func (f *fakeLedgerReader) ListByUser(context.Context, db.DBTX, uuid.UUID) ([]*ledger.Entry, error) {
	return f.entries, nil
}

func TestAvailabilityQueries_GetAvailableSlots(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, seoul)
	shopID := uuid.New()
	serviceID := uuid.New()

	catalog := &fakeCatalogReader{
		shop: &repository.ShopSnapshot{
			ID:           shopID,
			OwnerID:      uuid.New(),
			Timezone:     "Asia/Seoul",
			OpenMinutes:  10 * 60,
			CloseMinutes: 13 * 60,
			AdvanceDays:  30,
		},
		services: []*repository.ServiceSnapshot{
			{ID: serviceID, ShopID: shopID, DurationMinutes: 60, Price: 100000},
		},
	}

	newQuery := func(busy, held []schedule.TimeRange) *queries.AvailabilityQueries {
		return queries.NewAvailabilityQueries(
			fakeRunner{},
			&stubReservationReader{busy: busy},
			catalog,
			&fakeHoldReader{held: held},
			clock.NewMockClock(now),
			config.NewTestPolicy(),
		)
	}

	input := queries.AvailabilityInput{
		ShopID:     shopID,
		ServiceIDs: []uuid.UUID{serviceID},
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, seoul),
	}

	t.Run("enumerates every slot fitting the operating window", func(t *testing.T) {
		out, err := newQuery(nil, nil).GetAvailableSlots(context.Background(), input)

		require.NoError(t, err)
		// 10:00-13:00 window, 60m duration, 30m granularity: starts at
		// 10:00, 10:30, 11:00, 11:30, 12:00
		require.Len(t, out.Slots, 5)
		assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, seoul), out.Slots[0].Start)
		assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, seoul), out.Slots[4].Start)
	})

	t.Run("excludes slots overlapping busy intervals plus the grace buffer", func(t *testing.T) {
		busy := []schedule.TimeRange{
			schedule.MustTimeRange(
				time.Date(2026, 3, 2, 11, 0, 0, 0, seoul),
				time.Date(2026, 3, 2, 11, 30, 0, 0, seoul),
			),
		}

		out, err := newQuery(busy, nil).GetAvailableSlots(context.Background(), input)

		require.NoError(t, err)
		// busy 11:00-11:30 +15m buffer kills 10:30, 11:00 and 11:30 starts
		starts := make([]time.Time, 0, len(out.Slots))
		for _, s := range out.Slots {
			starts = append(starts, s.Start)
		}
		assert.Equal(t, []time.Time{
			time.Date(2026, 3, 2, 10, 0, 0, 0, seoul),
			time.Date(2026, 3, 2, 12, 0, 0, 0, seoul),
		}, starts)
	})

	t.Run("treats transient holds exactly like busy intervals", func(t *testing.T) {
		held := []schedule.TimeRange{
			schedule.MustTimeRange(
				time.Date(2026, 3, 2, 10, 0, 0, 0, seoul),
				time.Date(2026, 3, 2, 10, 30, 0, 0, seoul),
			),
		}

		out, err := newQuery(nil, held).GetAvailableSlots(context.Background(), input)

		require.NoError(t, err)
		for _, s := range out.Slots {
			assert.False(t, s.Start.Before(time.Date(2026, 3, 2, 10, 45, 0, 0, seoul)))
		}
	})
}

func TestPointQueries_GetBalance(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	available, err := ledger.NewAdjustmentEntry(userID, 3000, now.Add(-time.Hour), now.Add(24*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	pending, err := ledger.NewAdjustmentEntry(userID, 2000, now.Add(time.Hour), now.Add(24*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)

	q := queries.NewPointQueries(fakeRunner{}, &fakeLedgerReader{entries: []*ledger.Entry{available, pending}}, clock.NewMockClock(now))

	balance, err := q.GetBalance(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, int64(3000), balance.Available)
	assert.Equal(t, int64(2000), balance.Pending)
}
