package repository

import (
	"context"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

type LedgerRepository struct {
	db db.DBTX
}

func NewLedgerRepository(dbtx db.DBTX) *LedgerRepository {
	return &LedgerRepository{db: dbtx}
}

const entryColumns = `
	id, user_id, amount, kind, source_reservation_id, source_entry_id,
	remaining_unconsumed, available_from, expires_at, created_at`

func (r *LedgerRepository) Append(ctx context.Context, tx db.DBTX, e *ledger.Entry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO point_entries (
			id, user_id, amount, kind, source_reservation_id, source_entry_id,
			remaining_unconsumed, available_from, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID(), e.UserID(), e.Amount(), string(e.Kind()),
		e.SourceReservationID(), e.SourceEntryID(),
		e.RemainingUnconsumed(), e.AvailableFrom(), e.ExpiresAt(), e.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append ledger entry", err, infra.KindFromPgError(err))
	}
	return nil
}

// SpendableForUpdate loads the user's spendable credit rows in FIFO order and
// locks them, serializing concurrent spends for the same user. Spends by
// different users touch disjoint rows and never contend.
func (r *LedgerRepository) SpendableForUpdate(ctx context.Context, tx db.DBTX, userID uuid.UUID, now time.Time) ([]*ledger.Entry, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+entryColumns+`
		FROM point_entries
		WHERE user_id = $1
		  AND kind IN ('earn', 'referral_bonus', 'adjustment')
		  AND remaining_unconsumed > 0
		  AND available_from <= $2
		  AND expires_at > $2
		ORDER BY available_from, created_at
		FOR UPDATE`,
		userID, now,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock spendable entries", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ApplyDecrement reduces a credit row's remainder. The WHERE guard plus the
// table's CHECK constraint keep remaining_unconsumed from ever going negative.
func (r *LedgerRepository) ApplyDecrement(ctx context.Context, tx db.DBTX, entryID uuid.UUID, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE point_entries
		SET remaining_unconsumed = remaining_unconsumed - $1
		WHERE id = $2 AND remaining_unconsumed >= $1`,
		amount, entryID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to decrement ledger entry", err, infra.KindFromPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("ledger entry remainder changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) ([]*ledger.Entry, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT `+entryColumns+`
		FROM point_entries
		WHERE user_id = $1
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query ledger entries", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindLapsedForUpdate picks credit entries past expiry that still hold a
// remainder, skipping rows another sweep instance already locked.
func (r *LedgerRepository) FindLapsedForUpdate(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*ledger.Entry, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+entryColumns+`
		FROM point_entries
		WHERE kind IN ('earn', 'referral_bonus', 'adjustment')
		  AND remaining_unconsumed > 0
		  AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		now, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock lapsed entries", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for rows.Next() {
		var (
			id, userID                         uuid.UUID
			amount, remaining                  int64
			kind                               string
			sourceReservationID, sourceEntryID *uuid.UUID
			availableFrom, expiresAt, created  time.Time
		)
		err := rows.Scan(
			&id, &userID, &amount, &kind, &sourceReservationID, &sourceEntryID,
			&remaining, &availableFrom, &expiresAt, &created,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan ledger entry", err)
		}
		out = append(out, ledger.ReconstructEntry(
			id, userID, amount, ledger.Kind(kind),
			sourceReservationID, sourceEntryID,
			remaining, availableFrom, expiresAt, created,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ledger entries", err)
	}
	return out, nil
}
