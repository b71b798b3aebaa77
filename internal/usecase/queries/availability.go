package queries

import (
	"context"
	"time"

	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrShopNotFound    = errs.New("shop not found")
	ErrServiceNotFound = errs.New("service not found")
)

type AvailabilityInput struct {
	ShopID     uuid.UUID
	ServiceIDs []uuid.UUID
	Date       time.Time
}

type Slot struct {
	Start time.Time
	End   time.Time
}

type AvailabilityOutput struct {
	ShopID   uuid.UUID
	Date     time.Time
	Duration time.Duration
	Slots    []Slot
}

type AvailabilityQueries struct {
	runner       shared.TxRunner
	reservations ReservationReader
	catalog      CatalogReader
	holds        HoldReader
	clk          clock.Clock
	policy       config.PolicyConfig
}

func NewAvailabilityQueries(
	runner shared.TxRunner,
	reservations ReservationReader,
	catalog CatalogReader,
	holds HoldReader,
	clk clock.Clock,
	policy config.PolicyConfig,
) *AvailabilityQueries {
	return &AvailabilityQueries{
		runner:       runner,
		reservations: reservations,
		catalog:      catalog,
		holds:        holds,
		clk:          clk,
		policy:       policy,
	}
}

// GetAvailableSlots enumerates bookable start times for a service set on one
// date. Busy intervals come from two places: committed live reservations and
// transient holds in Redis. The view is advisory; booking still races through
// the hold and the overlap constraint.
func (q *AvailabilityQueries) GetAvailableSlots(ctx context.Context, input AvailabilityInput) (*AvailabilityOutput, error) {
	now := q.clk.Now()

	shop, err := q.catalog.FindShop(ctx, input.ShopID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrShopNotFound)
		}
		return nil, err
	}
	services, err := q.catalog.FindServices(ctx, input.ShopID, input.ServiceIDs)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrServiceNotFound)
		}
		return nil, err
	}

	var duration time.Duration
	for _, svc := range services {
		duration += time.Duration(svc.DurationMinutes) * time.Minute
	}

	loc, err := time.LoadLocation(shop.Timezone)
	if err != nil {
		loc = time.UTC
	}
	window, err := schedule.OperatingWindow(input.Date, shop.OpenMinutes, shop.CloseMinutes, loc)
	if err != nil {
		return nil, err
	}

	busy, err := q.reservations.BusyRanges(ctx, q.runner.DB(), input.ShopID, window)
	if err != nil {
		return nil, err
	}
	held, err := q.holds.HeldRanges(ctx, input.ShopID, window)
	if err != nil {
		return nil, err
	}

	advanceDays := shop.AdvanceDays
	if advanceDays <= 0 {
		advanceDays = q.policy.BookingAdvanceDays
	}

	params := schedule.AvailabilityParams{
		Hours:       window,
		Granularity: q.policy.SlotGranularity,
		Duration:    duration,
		Buffer:      q.policy.GraceBuffer,
		Busy:        append(busy, held...),
		Now:         now,
		AdvanceDays: advanceDays,
	}

	slots := make([]Slot, 0)
	for candidate := range schedule.Candidates(params) {
		slots = append(slots, Slot{Start: candidate.Start(), End: candidate.End()})
	}

	return &AvailabilityOutput{
		ShopID:   input.ShopID,
		Date:     input.Date,
		Duration: duration,
		Slots:    slots,
	}, nil
}
