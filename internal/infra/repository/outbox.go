package repository

import (
	"context"
	"time"

	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

// OutboxEvent is a queued domain event. The row ID doubles as the
// idempotency key consumers deduplicate on; emission is at-least-once.
type OutboxEvent struct {
	ID        uuid.UUID
	Topic     string
	Payload   []byte
	Status    string
	Attempts  int32
	LastError *string
	RunAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	OutboxStatusQueued    = "queued"
	OutboxStatusPublished = "published"
)

type OutboxRepository struct {
	db db.DBTX
}

func NewOutboxRepository(dbtx db.DBTX) *OutboxRepository {
	return &OutboxRepository{db: dbtx}
}

// Enqueue writes the event in the caller's transaction so the event exists
// iff the state change it announces committed.
func (r *OutboxRepository) Enqueue(ctx context.Context, tx db.DBTX, topic string, payload []byte, runAt time.Time) (uuid.UUID, error) {
	eventID := uuid.New()
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox_events (id, topic, payload, status, run_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventID, topic, payload, OutboxStatusQueued, runAt,
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to enqueue outbox event", err, infra.KindFromPgError(err))
	}
	return eventID, nil
}

func (r *OutboxRepository) PendingForUpdate(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*OutboxEvent, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, topic, payload, status, attempts, last_error, run_at, created_at, updated_at
		FROM outbox_events
		WHERE status = $1 AND run_at <= $2
		ORDER BY run_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		OutboxStatusQueued, now, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock pending outbox events", err)
	}
	defer rows.Close()

	var out []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		err := rows.Scan(&e.ID, &e.Topic, &e.Payload, &e.Status, &e.Attempts, &e.LastError, &e.RunAt, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan outbox event", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate outbox events", err)
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, tx db.DBTX, eventID uuid.UUID, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE outbox_events
		SET status = $1, updated_at = $2
		WHERE id = $3`,
		OutboxStatusPublished, now, eventID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark outbox event published", err)
	}
	return nil
}

// RecordFailure keeps the event queued for the next publisher tick.
func (r *OutboxRepository) RecordFailure(ctx context.Context, tx db.DBTX, eventID uuid.UUID, publishErr string, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE outbox_events
		SET attempts = attempts + 1, last_error = $1, updated_at = $2
		WHERE id = $3`,
		publishErr, now, eventID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record outbox failure", err)
	}
	return nil
}
