package queries

import (
	"context"
	"time"

	"beautybook/internal/domain/identity"
	"beautybook/internal/domain/reservation"
	"beautybook/internal/infra"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrPermissionDenied    = errs.New("permission denied")
)

type PaymentDetail struct {
	ID                uuid.UUID
	Stage             string
	Amount            int64
	Status            string
	ExternalReference string
	PaidAt            *time.Time
}

type ReservationDetail struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	ShopID        uuid.UUID
	ServiceIDs    []uuid.UUID
	SlotStart     time.Time
	SlotEnd       time.Time
	Status        string
	TotalAmount   int64
	DepositAmount int64
	FinalAmount   *int64
	PointsUsed    int64
	ConfirmedAt   *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	NoShowAt      *time.Time
	CreatedAt     time.Time
	Payments      []PaymentDetail
}

type ReservationQueries struct {
	runner       shared.TxRunner
	reservations ReservationReader
	payments     PaymentReader
	catalog      CatalogReader
}

func NewReservationQueries(
	runner shared.TxRunner,
	reservations ReservationReader,
	payments PaymentReader,
	catalog CatalogReader,
) *ReservationQueries {
	return &ReservationQueries{
		runner:       runner,
		reservations: reservations,
		payments:     payments,
		catalog:      catalog,
	}
}

// GetReservation returns the full detail including payment legs. Visible to
// the booking customer and the shop's owner only.
func (q *ReservationQueries) GetReservation(ctx context.Context, actor identity.Actor, reservationID uuid.UUID) (*ReservationDetail, error) {
	res, err := q.reservations.FindByID(ctx, q.runner.DB(), reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrReservationNotFound)
		}
		return nil, err
	}

	if err := q.authorize(ctx, actor, res); err != nil {
		return nil, err
	}

	records, err := q.payments.FindByReservation(ctx, q.runner.DB(), reservationID)
	if err != nil {
		return nil, err
	}

	detail := toDetail(res)
	for _, rec := range records {
		detail.Payments = append(detail.Payments, PaymentDetail{
			ID:                rec.ID(),
			Stage:             string(rec.Stage()),
			Amount:            rec.Amount(),
			Status:            string(rec.Status()),
			ExternalReference: rec.ExternalReference(),
			PaidAt:            rec.PaidAt(),
		})
	}
	return detail, nil
}

// ListMyReservations returns the customer's own reservations, newest first.
func (q *ReservationQueries) ListMyReservations(ctx context.Context, customerID uuid.UUID) ([]*ReservationDetail, error) {
	list, err := q.reservations.FindByCustomer(ctx, q.runner.DB(), customerID)
	if err != nil {
		return nil, err
	}

	out := make([]*ReservationDetail, 0, len(list))
	for _, res := range list {
		out = append(out, toDetail(res))
	}
	return out, nil
}

func (q *ReservationQueries) authorize(ctx context.Context, actor identity.Actor, res *reservation.Reservation) error {
	if actor.IsSystem() || actor.UserID == res.CustomerID() {
		return nil
	}
	if actor.IsShopOwner() {
		shop, err := q.catalog.FindShop(ctx, res.ShopID())
		if err != nil {
			return err
		}
		if shop.OwnerID == actor.UserID {
			return nil
		}
	}
	return ErrPermissionDenied
}

func toDetail(res *reservation.Reservation) *ReservationDetail {
	return &ReservationDetail{
		ID:            res.ID(),
		CustomerID:    res.CustomerID(),
		ShopID:        res.ShopID(),
		ServiceIDs:    res.ServiceIDs(),
		SlotStart:     res.Slot().Start(),
		SlotEnd:       res.Slot().End(),
		Status:        string(res.Status()),
		TotalAmount:   res.TotalAmount(),
		DepositAmount: res.DepositAmount(),
		FinalAmount:   res.FinalAmount(),
		PointsUsed:    res.PointsUsed(),
		ConfirmedAt:   res.ConfirmedAt(),
		CompletedAt:   res.CompletedAt(),
		CancelledAt:   res.CancelledAt(),
		NoShowAt:      res.NoShowAt(),
		CreatedAt:     res.CreatedAt(),
	}
}
