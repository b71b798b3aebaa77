package commands

import (
	"context"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/referral"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/holdstore"
	"beautybook/internal/infra/repository"

	"github.com/google/uuid"
)

// Consumer-side ports over the infra layer. Implementations live in
// internal/infra; tests substitute fakes.

type ReservationRepository interface {
	Create(ctx context.Context, tx db.DBTX, res *reservation.Reservation) error
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	UpdateTransition(ctx context.Context, tx db.DBTX, res *reservation.Reservation, loadedVersion int32) error
	BusyRanges(ctx context.Context, dbtx db.DBTX, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error)
	FindDueNoShow(ctx context.Context, tx db.DBTX, startedBefore time.Time, limit int32) ([]*reservation.Reservation, error)
	FindStaleRequested(ctx context.Context, tx db.DBTX, createdBefore time.Time, limit int32) ([]*reservation.Reservation, error)
	HasCompletedPaid(ctx context.Context, dbtx db.DBTX, customerID uuid.UUID, excludeReservationID uuid.UUID) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, tx db.DBTX, rec *payment.Record) error
	FindByExternalRefForUpdate(ctx context.Context, tx db.DBTX, externalRef string) (*payment.Record, error)
	FindByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]*payment.Record, error)
	UpdateStatus(ctx context.Context, tx db.DBTX, rec *payment.Record) error
	PaidTotal(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (int64, error)
}

type LedgerRepository interface {
	Append(ctx context.Context, tx db.DBTX, e *ledger.Entry) error
	SpendableForUpdate(ctx context.Context, tx db.DBTX, userID uuid.UUID, now time.Time) ([]*ledger.Entry, error)
	ApplyDecrement(ctx context.Context, tx db.DBTX, entryID uuid.UUID, amount int64) error
	FindLapsedForUpdate(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*ledger.Entry, error)
}

type ReferralRepository interface {
	Create(ctx context.Context, tx db.DBTX, rel *referral.Relationship) error
	FindByRefereeForUpdate(ctx context.Context, tx db.DBTX, refereeID uuid.UUID) (*referral.Relationship, error)
	SetQualified(ctx context.Context, tx db.DBTX, rel *referral.Relationship) error
	ReferralCounts(ctx context.Context, dbtx db.DBTX, referrerID uuid.UUID) (total, successful int, err error)
	GetInfluencer(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (*referral.InfluencerStatus, error)
	Promote(ctx context.Context, tx db.DBTX, status *referral.InfluencerStatus) error
}

type CatalogRepository interface {
	FindShop(ctx context.Context, shopID uuid.UUID) (*repository.ShopSnapshot, error)
	FindServices(ctx context.Context, shopID uuid.UUID, serviceIDs []uuid.UUID) ([]*repository.ServiceSnapshot, error)
}

type HoldStore interface {
	Acquire(ctx context.Context, shopID uuid.UUID, slot schedule.TimeRange) (*holdstore.Hold, error)
	Release(ctx context.Context, hold *holdstore.Hold) error
	HeldRanges(ctx context.Context, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, tx db.DBTX, topic string, payload []byte, runAt time.Time) (uuid.UUID, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, key, userID uuid.UUID) (*repository.IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, key, userID, resultReservationID uuid.UUID) error
}
