package commands

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PointCommands struct {
	runner  shared.TxRunner
	entries LedgerRepository
	outbox  OutboxRepository
	clk     clock.Clock
	policy  config.PolicyConfig
}

func NewPointCommands(
	runner shared.TxRunner,
	entries LedgerRepository,
	outbox OutboxRepository,
	clk clock.Clock,
	policy config.PolicyConfig,
) *PointCommands {
	return &PointCommands{
		runner:  runner,
		entries: entries,
		outbox:  outbox,
		clk:     clk,
		policy:  policy,
	}
}

// Use spends points all-or-nothing. Concurrent spends by the same user
// serialize on the locked credit rows, so two racing requests can never both
// draw down the same balance.
func (c *PointCommands) Use(ctx context.Context, userID uuid.UUID, amount int64, reservationID *uuid.UUID) error {
	if amount <= 0 {
		return errs.Mark(ledger.ErrNonPositiveAmount, ErrValidation)
	}
	now := c.clk.Now()

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		_, err := spendPoints(ctx, tx, c.entries, userID, amount, reservationID, now)
		return err
	})
}

// SweepExpired reverses the unconsumed remainder of lapsed credit entries.
// Claimed rows are skipped by concurrent sweepers, and zeroing the remainder
// keeps the pass idempotent.
func (c *PointCommands) SweepExpired(ctx context.Context, limit int32) (int, error) {
	now := c.clk.Now()

	var swept int
	err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		lapsed, err := c.entries.FindLapsedForUpdate(ctx, tx, now, limit)
		if err != nil {
			return err
		}
		for _, credit := range lapsed {
			expire, err := ledger.NewExpireEntry(credit, now)
			if err != nil {
				return err
			}
			if err := c.entries.Append(ctx, tx, expire); err != nil {
				return err
			}
			if err := c.entries.ApplyDecrement(ctx, tx, credit.ID(), credit.RemainingUnconsumed()); err != nil {
				return err
			}
			if err := enqueuePointsEvent(ctx, c.outbox, tx, TopicPointsExpired, expire, now); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	return swept, err
}

// spendPoints plans a FIFO consumption over the user's locked credit rows and
// persists the decrements together with the negative use entry. Shared by
// the standalone spend and booking-time point application.
func spendPoints(ctx context.Context, tx db.DBTX, entries LedgerRepository, userID uuid.UUID, amount int64, reservationID *uuid.UUID, now time.Time) (*ledger.Entry, error) {
	spendable, err := entries.SpendableForUpdate(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}

	plan, err := ledger.PlanConsumption(spendable, amount, now)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientPoints) {
			return nil, errs.Mark(err, ErrInsufficientPoints)
		}
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := ledger.Apply(plan); err != nil {
		return nil, err
	}

	for _, d := range plan {
		if err := entries.ApplyDecrement(ctx, tx, d.Entry.ID(), d.Amount); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return nil, errs.Mark(err, ErrInsufficientPoints)
			}
			return nil, err
		}
	}

	use, err := ledger.NewUseEntry(userID, amount, reservationID, now)
	if err != nil {
		return nil, err
	}
	if err := entries.Append(ctx, tx, use); err != nil {
		return nil, err
	}
	return use, nil
}

func ledgerCreditable(amount int64, policy config.PolicyConfig, multiplier decimal.Decimal) int64 {
	return ledger.Creditable(amount, policy.EarnCapAmount, policy.EarnRate, multiplier)
}

func newEarnEntry(userID, reservationID uuid.UUID, points int64, now time.Time, policy config.PolicyConfig) (*ledger.Entry, error) {
	return ledger.NewEarnEntry(userID, reservationID, points, now, policy.AvailabilityDelay, policy.PointLifetime)
}

// newReturnEntry re-credits points forfeited by a refunded booking. The
// returned points are spendable immediately; the availability delay only
// guards fresh earnings.
func newReturnEntry(userID uuid.UUID, points int64, now time.Time, policy config.PolicyConfig) (*ledger.Entry, error) {
	return ledger.NewAdjustmentEntry(userID, points, now, now.Add(policy.PointLifetime), now)
}
