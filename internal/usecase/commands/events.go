package commands

import (
	"context"
	"encoding/json"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

// Event topics published through the outbox. Routing keys on the broker's
// topic exchange, so consumers can bind reservation.* or points.*.
const (
	TopicReservationRequested = "reservation.requested"
	TopicReservationConfirmed = "reservation.confirmed"
	TopicReservationCompleted = "reservation.completed"
	TopicReservationCancelled = "reservation.cancelled"
	TopicReservationNoShow    = "reservation.no_show"
	TopicPaymentSettled       = "payment.settled"
	TopicPointsCredited       = "points.credited"
	TopicPointsExpired        = "points.expired"
)

type reservationEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ShopID        uuid.UUID `json:"shop_id"`
	Status        string    `json:"status"`
	SlotStart     time.Time `json:"slot_start"`
	SlotEnd       time.Time `json:"slot_end"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type pointsEvent struct {
	UserID        uuid.UUID  `json:"user_id"`
	EntryID       uuid.UUID  `json:"entry_id"`
	Amount        int64      `json:"amount"`
	Kind          string     `json:"kind"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

type paymentEvent struct {
	ReservationID     uuid.UUID `json:"reservation_id"`
	ExternalReference string    `json:"external_reference"`
	Stage             string    `json:"stage"`
	Amount            int64     `json:"amount"`
	Status            string    `json:"status"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func enqueueReservationEvent(ctx context.Context, outbox OutboxRepository, tx db.DBTX, topic string, res *reservation.Reservation, now time.Time) error {
	payload, err := json.Marshal(reservationEvent{
		ReservationID: res.ID(),
		CustomerID:    res.CustomerID(),
		ShopID:        res.ShopID(),
		Status:        string(res.Status()),
		SlotStart:     res.Slot().Start(),
		SlotEnd:       res.Slot().End(),
		OccurredAt:    now,
	})
	if err != nil {
		return err
	}
	_, err = outbox.Enqueue(ctx, tx, topic, payload, now)
	return err
}

func enqueuePaymentEvent(ctx context.Context, outbox OutboxRepository, tx db.DBTX, rec *payment.Record, now time.Time) error {
	payload, err := json.Marshal(paymentEvent{
		ReservationID:     rec.ReservationID(),
		ExternalReference: rec.ExternalReference(),
		Stage:             string(rec.Stage()),
		Amount:            rec.Amount(),
		Status:            string(rec.Status()),
		OccurredAt:        now,
	})
	if err != nil {
		return err
	}
	_, err = outbox.Enqueue(ctx, tx, TopicPaymentSettled, payload, now)
	return err
}

func enqueuePointsEvent(ctx context.Context, outbox OutboxRepository, tx db.DBTX, topic string, entry *ledger.Entry, now time.Time) error {
	payload, err := json.Marshal(pointsEvent{
		UserID:        entry.UserID(),
		EntryID:       entry.ID(),
		Amount:        entry.Amount(),
		Kind:          string(entry.Kind()),
		ReservationID: entry.SourceReservationID(),
		OccurredAt:    now,
	})
	if err != nil {
		return err
	}
	_, err = outbox.Enqueue(ctx, tx, topic, payload, now)
	return err
}
