package repository

import (
	"context"
	"time"

	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Endpoint            string
	RequestHash         string
	Status              string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
	CreatedAt           time.Time
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// TryInsert claims the key. An existing row is not an error; the caller
// inspects the stored record to decide between replay and rejection.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key, user_id) DO NOTHING`,
		key, userID, endpoint, requestHash, IdempotencyStatusProcessing, expiresAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert idempotency key", err, infra.KindFromPgError(err))
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT key, user_id, endpoint, request_hash, status, result_reservation_id, expires_at, created_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2`,
		key, userID,
	)

	var rec IdempotencyRecord
	err := row.Scan(&rec.Key, &rec.UserID, &rec.Endpoint, &rec.RequestHash, &rec.Status, &rec.ResultReservationID, &rec.ExpiresAt, &rec.CreatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, tx db.DBTX, key, userID, resultReservationID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE idempotency_keys
		SET status = $1, result_reservation_id = $2
		WHERE key = $3 AND user_id = $4`,
		IdempotencyStatusCompleted, resultReservationID, key, userID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}
