//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra/gateway"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payFixture struct {
	reservations *fakeReservations
	payments     *fakePayments
	outbox       *fakeOutbox
	gw           *fakeGateway
	clk          *clock.MockClock
	cmd          *commands.PaymentCommands

	customerID uuid.UUID
	now        time.Time
}

func newPayFixture(t *testing.T) *payFixture {
	t.Helper()

	f := &payFixture{
		reservations: newFakeReservations(),
		payments:     &fakePayments{},
		outbox:       &fakeOutbox{},
		gw:           &fakeGateway{},
		customerID:   uuid.New(),
		now:          time.Date(2026, 3, 2, 9, 0, 0, 0, seoul),
	}
	f.clk = clock.NewMockClock(f.now)
	f.cmd = commands.NewPaymentCommands(fakeRunner{}, f.reservations, f.payments, f.outbox, f.gw, f.clk)
	return f
}

func (f *payFixture) seedRequested(t *testing.T) *reservation.Reservation {
	t.Helper()

	res, err := reservation.NewReservation(
		f.customerID, uuid.New(), []uuid.UUID{uuid.New()},
		schedule.MustTimeRange(f.now.Add(24*time.Hour), f.now.Add(25*time.Hour)), time.Hour,
		100000, 20000, 0, f.now,
	)
	require.NoError(t, err)
	f.reservations.byID[res.ID()] = res
	return res
}

func TestPaymentCommands_PrepareDeposit(t *testing.T) {
	t.Run("creates an intent and a pending deposit record", func(t *testing.T) {
		f := newPayFixture(t)
		res := f.seedRequested(t)

		out, err := f.cmd.PrepareDeposit(context.Background(), f.customerID, res.ID())

		require.NoError(t, err)
		assert.Equal(t, int64(20000), out.Amount)
		assert.NotEmpty(t, out.ExternalReference)
		assert.NotEmpty(t, out.RedirectURL)

		require.Len(t, f.payments.records, 1)
		rec := f.payments.records[0]
		assert.Equal(t, payment.StageDeposit, rec.Stage())
		assert.Equal(t, payment.StatusPending, rec.Status())
	})

	t.Run("rejects a stranger", func(t *testing.T) {
		f := newPayFixture(t)
		res := f.seedRequested(t)

		_, err := f.cmd.PrepareDeposit(context.Background(), uuid.New(), res.ID())

		assert.ErrorIs(t, err, commands.ErrPermissionDenied)
	})

	t.Run("rejects when the deposit is already paid", func(t *testing.T) {
		f := newPayFixture(t)
		res := f.seedRequested(t)

		paid, err := payment.NewRecord(res.ID(), payment.StageDeposit, 20000, "dep-1", f.now)
		require.NoError(t, err)
		require.NoError(t, paid.MarkPaid(f.now))
		f.payments.records = []*payment.Record{paid}

		_, err = f.cmd.PrepareDeposit(context.Background(), f.customerID, res.ID())

		assert.ErrorIs(t, err, commands.ErrStateConflict)
	})

	t.Run("rejects a cancelled reservation", func(t *testing.T) {
		f := newPayFixture(t)
		res := f.seedRequested(t)
		require.NoError(t, f.reservations.byID[res.ID()].CancelByUser(f.now))

		_, err := f.cmd.PrepareDeposit(context.Background(), f.customerID, res.ID())

		assert.ErrorIs(t, err, commands.ErrStateConflict)
	})
}

func TestPaymentCommands_HandleWebhook(t *testing.T) {
	seedPending := func(f *payFixture) *payment.Record {
		rec, err := payment.NewRecord(uuid.New(), payment.StageDeposit, 20000, "dep-1", f.now)
		if err != nil {
			panic(err)
		}
		f.payments.records = []*payment.Record{rec}
		return rec
	}

	t.Run("settles a pending record", func(t *testing.T) {
		f := newPayFixture(t)
		rec := seedPending(f)

		err := f.cmd.HandleWebhook(context.Background(), &gateway.WebhookEvent{
			ExternalReference: "dep-1",
			Status:            "succeeded",
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, rec.Status())
		require.Len(t, f.payments.updated, 1)
		assert.Contains(t, f.outbox.topics, commands.TopicPaymentSettled)
	})

	t.Run("acknowledges a duplicate delivery without touching anything", func(t *testing.T) {
		f := newPayFixture(t)
		rec := seedPending(f)
		require.NoError(t, rec.MarkPaid(f.now))

		err := f.cmd.HandleWebhook(context.Background(), &gateway.WebhookEvent{
			ExternalReference: "dep-1",
			Status:            "succeeded",
		})

		require.NoError(t, err)
		assert.Empty(t, f.payments.updated)
		assert.Empty(t, f.outbox.topics)
	})

	t.Run("records a failed payment", func(t *testing.T) {
		f := newPayFixture(t)
		rec := seedPending(f)

		err := f.cmd.HandleWebhook(context.Background(), &gateway.WebhookEvent{
			ExternalReference: "dep-1",
			Status:            "failed",
		})

		require.NoError(t, err)
		assert.Equal(t, payment.StatusFailed, rec.Status())
	})

	t.Run("rejects an unknown reference", func(t *testing.T) {
		f := newPayFixture(t)

		err := f.cmd.HandleWebhook(context.Background(), &gateway.WebhookEvent{
			ExternalReference: "nope",
			Status:            "succeeded",
		})

		assert.ErrorIs(t, err, commands.ErrPaymentNotFound)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		f := newPayFixture(t)
		seedPending(f)

		err := f.cmd.HandleWebhook(context.Background(), &gateway.WebhookEvent{
			ExternalReference: "dep-1",
			Status:            "maybe",
		})

		assert.ErrorIs(t, err, commands.ErrValidation)
	})
}
