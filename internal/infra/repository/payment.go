package repository

import (
	"context"
	"time"

	"beautybook/internal/domain/payment"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

type PaymentRepository struct {
	db db.DBTX
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{db: dbtx}
}

const paymentColumns = `
	id, reservation_id, stage, amount, status, external_reference,
	paid_at, created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, tx db.DBTX, rec *payment.Record) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (
			id, reservation_id, stage, amount, status, external_reference, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID(), rec.ReservationID(), string(rec.Stage()), rec.Amount(),
		string(rec.Status()), rec.ExternalReference(), rec.CreatedAt(), rec.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create payment", err, infra.KindFromPgError(err))
	}
	return nil
}

// FindByExternalRefForUpdate locks the row so concurrent webhook deliveries
// for the same external reference serialize on it.
func (r *PaymentRepository) FindByExternalRefForUpdate(ctx context.Context, tx db.DBTX, externalRef string) (*payment.Record, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE external_reference = $1
		FOR UPDATE`,
		externalRef,
	)
	rec, err := scanPayment(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by external reference", err)
	}
	return rec, nil
}

func (r *PaymentRepository) FindByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]*payment.Record, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE reservation_id = $1
		ORDER BY created_at`,
		reservationID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query payments", err)
	}
	defer rows.Close()

	var out []*payment.Record
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate payments", err)
	}
	return out, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx db.DBTX, rec *payment.Record) error {
	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET status = $1, paid_at = $2, updated_at = $3
		WHERE id = $4`,
		string(rec.Status()), rec.PaidAt(), rec.UpdatedAt(), rec.ID(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err, infra.KindFromPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found for update", nil, infra.KindNotFound)
	}
	return nil
}

// PaidTotal sums settled (paid, not refunded) amounts for a reservation.
func (r *PaymentRepository) PaidTotal(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (int64, error) {
	var total int64
	err := dbtx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE reservation_id = $1 AND status = 'paid'`,
		reservationID,
	).Scan(&total)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sum paid payments", err)
	}
	return total, nil
}

func scanPayment(row rowScanner) (*payment.Record, error) {
	var (
		id, reservationID    uuid.UUID
		stage, status, ref   string
		amount               int64
		paidAt               *time.Time
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &reservationID, &stage, &amount, &status, &ref, &paidAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return payment.Reconstruct(
		id, reservationID, payment.Stage(stage), amount, payment.Status(status),
		ref, paidAt, createdAt, updatedAt,
	), nil
}
