package queries

import (
	"context"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/domain/payment"
	"beautybook/internal/domain/referral"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/domain/schedule"
	"beautybook/internal/infra/db"
	"beautybook/internal/infra/repository"

	"github.com/google/uuid"
)

type ReservationReader interface {
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	FindByCustomer(ctx context.Context, dbtx db.DBTX, customerID uuid.UUID) ([]*reservation.Reservation, error)
	BusyRanges(ctx context.Context, dbtx db.DBTX, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error)
}

type PaymentReader interface {
	FindByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) ([]*payment.Record, error)
}

type LedgerReader interface {
	ListByUser(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) ([]*ledger.Entry, error)
}

type ReferralReader interface {
	ReferralCounts(ctx context.Context, dbtx db.DBTX, referrerID uuid.UUID) (total, successful int, err error)
	WasReferred(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (bool, error)
	GetInfluencer(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (*referral.InfluencerStatus, error)
}

type CatalogReader interface {
	FindShop(ctx context.Context, shopID uuid.UUID) (*repository.ShopSnapshot, error)
	FindServices(ctx context.Context, shopID uuid.UUID, serviceIDs []uuid.UUID) ([]*repository.ServiceSnapshot, error)
}

type HoldReader interface {
	HeldRanges(ctx context.Context, shopID uuid.UUID, window schedule.TimeRange) ([]schedule.TimeRange, error)
}

// Reader is the non-transactional database handle queries run against.
type Reader interface {
	DB() db.DBTX
}
