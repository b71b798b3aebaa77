package commands

import (
	"context"
	"errors"

	"beautybook/internal/domain/payment"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

type PrepareDepositOutput struct {
	ExternalReference string
	RedirectURL       string
	Amount            int64
}

type PaymentCommands struct {
	runner       shared.TxRunner
	reservations ReservationRepository
	payments     PaymentRepository
	outbox       OutboxRepository
	gw           gateway.Gateway
	clk          clock.Clock
}

func NewPaymentCommands(
	runner shared.TxRunner,
	reservations ReservationRepository,
	payments PaymentRepository,
	outbox OutboxRepository,
	gw gateway.Gateway,
	clk clock.Clock,
) *PaymentCommands {
	return &PaymentCommands{
		runner:       runner,
		reservations: reservations,
		payments:     payments,
		outbox:       outbox,
		gw:           gw,
		clk:          clk,
	}
}

// PrepareDeposit creates a gateway intent for the reservation's deposit and
// records it pending. Settlement arrives later through the webhook; a fresh
// call supersedes any earlier unpaid intent.
func (c *PaymentCommands) PrepareDeposit(ctx context.Context, customerID, reservationID uuid.UUID) (*PrepareDepositOutput, error) {
	now := c.clk.Now()

	res, err := c.reservations.FindByID(ctx, c.runner.DB(), reservationID)
	if err != nil {
		return nil, markNotFound(err, ErrReservationNotFound)
	}
	if res.CustomerID() != customerID {
		return nil, ErrPermissionDenied
	}
	if !res.Status().IsLive() {
		return nil, ErrStateConflict
	}
	if res.DepositAmount() == 0 {
		return nil, errs.Mark(errs.New("reservation has no deposit"), ErrValidation)
	}

	records, err := c.payments.FindByReservation(ctx, c.runner.DB(), reservationID)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Stage() == payment.StageDeposit && rec.IsPaid() {
			return nil, errs.Mark(errs.New("deposit already paid"), ErrStateConflict)
		}
	}

	intent, err := c.gw.CreateIntent(ctx, reservationID, res.DepositAmount())
	if err != nil {
		return nil, errs.Mark(err, ErrPaymentGateway)
	}

	rec, err := payment.NewRecord(reservationID, payment.StageDeposit, res.DepositAmount(), intent.ExternalReference, now)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}
	if err := c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		return c.payments.Create(ctx, tx, rec)
	}); err != nil {
		return nil, err
	}

	return &PrepareDepositOutput{
		ExternalReference: intent.ExternalReference,
		RedirectURL:       intent.RedirectURL,
		Amount:            res.DepositAmount(),
	}, nil
}

// HandleWebhook settles the payment record matching the external reference.
// Deliveries are at-least-once; a reference already settled is acknowledged
// and dropped. Settling a deposit never advances the reservation status —
// confirmation stays a shop-owner decision.
func (c *PaymentCommands) HandleWebhook(ctx context.Context, event *gateway.WebhookEvent) error {
	now := c.clk.Now()

	return c.runner.WithinTx(ctx, func(tx db.DBTX) error {
		rec, err := c.payments.FindByExternalRefForUpdate(ctx, tx, event.ExternalReference)
		if err != nil {
			return markNotFound(err, ErrPaymentNotFound)
		}

		switch event.Status {
		case "succeeded":
			err = rec.MarkPaid(now)
		case "failed":
			err = rec.MarkFailed(now)
		default:
			return errs.Mark(errs.New("unknown webhook status"), ErrValidation)
		}
		if err != nil {
			if errors.Is(err, payment.ErrAlreadySettled) {
				return nil
			}
			return err
		}

		if err := c.payments.UpdateStatus(ctx, tx, rec); err != nil {
			return err
		}
		return enqueuePaymentEvent(ctx, c.outbox, tx, rec, now)
	})
}
