package commands

import (
	"context"
	"errors"

	"beautybook/internal/domain/referral"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReferralCommands struct {
	runner    shared.TxRunner
	referrals ReferralRepository
	clk       clock.Clock
}

func NewReferralCommands(runner shared.TxRunner, referrals ReferralRepository, clk clock.Clock) *ReferralCommands {
	return &ReferralCommands{runner: runner, referrals: referrals, clk: clk}
}

// Register links the referee to the referrer whose code they used. A user can
// be referred at most once, never by themselves; either violation is
// rejected. The bonus itself is settled later, on the referee's first
// completed reservation.
func (c *ReferralCommands) Register(ctx context.Context, referrerID, refereeID uuid.UUID, code string) error {
	now := c.clk.Now()

	rel, err := referral.NewRelationship(referrerID, refereeID, code, now)
	if err != nil {
		if errors.Is(err, referral.ErrSelfReferral) {
			return errs.Mark(err, ErrReferralRejected)
		}
		return err
	}

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		if err := c.referrals.Create(ctx, tx, rel); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(referral.ErrAlreadyReferred, ErrReferralRejected)
			}
			return err
		}
		return nil
	})
}
