package repository

import (
	"context"
	"time"

	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	db db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{db: dbtx}
}

const reservationColumns = `
	id, customer_id, shop_id, lower(slot), upper(slot), status,
	total_amount, deposit_amount, final_amount, points_used, version,
	confirmed_at, completed_at, cancelled_at, no_show_at, created_at, updated_at`

// Create inserts the reservation row. The table's exclusion constraint on
// (shop_id, slot) over live statuses is the authoritative overlap check; a
// violation surfaces as KindConflict.
func (r *ReservationRepository) Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO reservations (
			id, customer_id, shop_id, slot, status,
			total_amount, deposit_amount, points_used, version, created_at, updated_at
		) VALUES ($1, $2, $3, tstzrange($4, $5, '[)'), $6, $7, $8, $9, $10, $11, $12)`,
		res.ID(), res.CustomerID(), res.ShopID(),
		res.Slot().Start(), res.Slot().End(), res.Status().String(),
		res.TotalAmount(), res.DepositAmount(), res.PointsUsed(), res.Version(),
		res.CreatedAt(), res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err, infra.KindFromPgError(err))
	}

	for i, serviceID := range res.ServiceIDs() {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservation_services (reservation_id, service_id, position)
			VALUES ($1, $2, $3)`,
			res.ID(), serviceID, i,
		)
		if err != nil {
			return infra.WrapRepoErr("failed to create reservation service", err, infra.KindFromPgError(err))
		}
	}

	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	row := dbtx.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	res, err := scanReservation(row, ctx, dbtx)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return res, nil
}

// UpdateTransition persists a status transition optimistically: the write
// only lands when the stored version still matches the version the entity
// was loaded with. Zero rows affected means a concurrent transition won.
func (r *ReservationRepository) UpdateTransition(ctx context.Context, tx db.DBTX, res *reservation.Reservation, loadedVersion int32) error {
	tag, err := tx.Exec(ctx, `
		UPDATE reservations
		SET status = $1, final_amount = $2, version = version + 1,
			confirmed_at = $3, completed_at = $4, cancelled_at = $5, no_show_at = $6,
			updated_at = $7
		WHERE id = $8 AND version = $9`,
		res.Status().String(), res.FinalAmount(),
		res.ConfirmedAt(), res.CompletedAt(), res.CancelledAt(), res.NoShowAt(),
		res.UpdatedAt(),
		res.ID(), loadedVersion,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err, infra.KindFromPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation version mismatch", nil, infra.KindConflict)
	}
	return nil
}

// BusyRanges returns every live reservation interval for a shop overlapping
// the given window, for availability computation.
func (r *ReservationRepository) BusyRanges(ctx context.Context, dbtx db.DBTX, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT lower(slot), upper(slot)
		FROM reservations
		WHERE shop_id = $1
		  AND status IN ('requested', 'confirmed')
		  AND slot && tstzrange($2, $3, '[)')
		ORDER BY lower(slot)`,
		shopID, window.Start(), window.End(),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query busy ranges", err)
	}
	defer rows.Close()

	var busy []schedule.TimeRange
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan busy range", err)
		}
		tr, err := schedule.NewTimeRange(start, end)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid stored slot range", err)
		}
		busy = append(busy, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate busy ranges", err)
	}
	return busy, nil
}

// FindDueNoShow lists confirmed reservations whose start passed the grace
// cutoff, locked so concurrent sweep ticks do not double-process.
func (r *ReservationRepository) FindDueNoShow(ctx context.Context, tx db.DBTX, startedBefore time.Time, limit int32) ([]*reservation.Reservation, error) {
	return r.findLocked(ctx, tx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = 'confirmed' AND upper(slot) IS NOT NULL AND lower(slot) <= $1
		ORDER BY lower(slot)
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		startedBefore, limit,
	)
}

// FindStaleRequested lists requested reservations created before the cutoff,
// for the deposit-timeout sweep.
func (r *ReservationRepository) FindStaleRequested(ctx context.Context, tx db.DBTX, createdBefore time.Time, limit int32) ([]*reservation.Reservation, error) {
	return r.findLocked(ctx, tx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = 'requested' AND created_at <= $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		createdBefore, limit,
	)
}

func (r *ReservationRepository) findLocked(ctx context.Context, tx db.DBTX, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	var ids []uuid.UUID
	for rows.Next() {
		res, err := scanReservationRow(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		out = append(out, res)
		ids = append(ids, res.ID())
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}

	if err := r.attachServices(ctx, tx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// HasCompletedPaid reports whether the customer has at least one completed
// reservation with its final payment settled (referral qualification check).
func (r *ReservationRepository) HasCompletedPaid(ctx context.Context, dbtx db.DBTX, customerID uuid.UUID, excludeReservationID uuid.UUID) (bool, error) {
	var exists bool
	err := dbtx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM reservations res
			JOIN payments p ON p.reservation_id = res.id AND p.stage = 'final' AND p.status = 'paid'
			WHERE res.customer_id = $1 AND res.status = 'completed' AND res.id <> $2
		)`,
		customerID, excludeReservationID,
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check completed paid reservations", err)
	}
	return exists, nil
}

func (r *ReservationRepository) FindByCustomer(ctx context.Context, dbtx db.DBTX, customerID uuid.UUID) ([]*reservation.Reservation, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE customer_id = $1
		ORDER BY lower(slot) DESC`,
		customerID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query customer reservations", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	var ids []uuid.UUID
	for rows.Next() {
		res, err := scanReservationRow(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		out = append(out, res)
		ids = append(ids, res.ID())
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservations", err)
	}

	if err := r.attachServices(ctx, dbtx, out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservationRow(row rowScanner) (*reservation.Reservation, error) {
	var (
		id, customerID, shopID                          uuid.UUID
		slotStart, slotEnd                              time.Time
		status                                          string
		totalAmount, depositAmount, pointsUsed          int64
		finalAmount                                     *int64
		version                                         int32
		confirmedAt, completedAt, cancelledAt, noShowAt *time.Time
		createdAt, updatedAt                            time.Time
	)

	err := row.Scan(
		&id, &customerID, &shopID, &slotStart, &slotEnd, &status,
		&totalAmount, &depositAmount, &finalAmount, &pointsUsed, &version,
		&confirmedAt, &completedAt, &cancelledAt, &noShowAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot, err := schedule.NewTimeRange(slotStart, slotEnd)
	if err != nil {
		return nil, err
	}

	return reservation.Reconstruct(
		id, customerID, shopID, nil, slot, reservation.Status(status),
		totalAmount, depositAmount, finalAmount, pointsUsed, version,
		confirmedAt, completedAt, cancelledAt, noShowAt, createdAt, updatedAt,
	), nil
}

func scanReservation(row rowScanner, ctx context.Context, dbtx db.DBTX) (*reservation.Reservation, error) {
	res, err := scanReservationRow(row)
	if err != nil {
		return nil, err
	}

	serviceIDs, err := loadServiceIDs(ctx, dbtx, res.ID())
	if err != nil {
		return nil, err
	}

	return reservation.Reconstruct(
		res.ID(), res.CustomerID(), res.ShopID(), serviceIDs, res.Slot(), res.Status(),
		res.TotalAmount(), res.DepositAmount(), res.FinalAmount(), res.PointsUsed(), res.Version(),
		res.ConfirmedAt(), res.CompletedAt(), res.CancelledAt(), res.NoShowAt(),
		res.CreatedAt(), res.UpdatedAt(),
	), nil
}

func (r *ReservationRepository) attachServices(ctx context.Context, dbtx db.DBTX, reservations []*reservation.Reservation, ids []uuid.UUID) error {
	for i, res := range reservations {
		serviceIDs, err := loadServiceIDs(ctx, dbtx, ids[i])
		if err != nil {
			return err
		}
		reservations[i] = reservation.Reconstruct(
			res.ID(), res.CustomerID(), res.ShopID(), serviceIDs, res.Slot(), res.Status(),
			res.TotalAmount(), res.DepositAmount(), res.FinalAmount(), res.PointsUsed(), res.Version(),
			res.ConfirmedAt(), res.CompletedAt(), res.CancelledAt(), res.NoShowAt(),
			res.CreatedAt(), res.UpdatedAt(),
		)
	}
	return nil
}

func loadServiceIDs(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT service_id FROM reservation_services
		WHERE reservation_id = $1 ORDER BY position`,
		reservationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
