package reservation

import (
	"errors"
	"time"

	"beautybook/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoServices             = errors.New("reservation requires at least one service")
	ErrSlotTooShort           = errors.New("slot shorter than total service duration")
	ErrNegativeAmount         = errors.New("amount cannot be negative")
	ErrDepositExceedsTotal    = errors.New("deposit cannot exceed total amount")
	ErrPointsExceedTotal      = errors.New("points used cannot exceed total amount")
	ErrInvalidTransition      = errors.New("invalid reservation status transition")
	ErrFinalAmountOutOfBounds = errors.New("final amount outside adjustment bounds")
	ErrNoShowTooEarly         = errors.New("no-show grace period has not elapsed")
)

type Reservation struct {
	id            uuid.UUID
	customerID    uuid.UUID
	shopID        uuid.UUID
	serviceIDs    []uuid.UUID
	slot          schedule.TimeRange
	status        Status
	totalAmount   int64
	depositAmount int64
	finalAmount   *int64
	pointsUsed    int64
	version       int32
	confirmedAt   *time.Time
	completedAt   *time.Time
	cancelledAt   *time.Time
	noShowAt      *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewReservation(
	customerID, shopID uuid.UUID,
	serviceIDs []uuid.UUID,
	slot schedule.TimeRange,
	serviceDuration time.Duration,
	totalAmount, depositAmount, pointsUsed int64,
	now time.Time,
) (*Reservation, error) {
	if len(serviceIDs) == 0 {
		return nil, ErrNoServices
	}
	if slot.Duration() < serviceDuration {
		return nil, ErrSlotTooShort
	}
	if totalAmount < 0 || depositAmount < 0 || pointsUsed < 0 {
		return nil, ErrNegativeAmount
	}
	if depositAmount > totalAmount {
		return nil, ErrDepositExceedsTotal
	}
	if pointsUsed > totalAmount {
		return nil, ErrPointsExceedTotal
	}

	return &Reservation{
		id:            uuid.New(),
		customerID:    customerID,
		shopID:        shopID,
		serviceIDs:    serviceIDs,
		slot:          slot,
		status:        StatusRequested,
		totalAmount:   totalAmount,
		depositAmount: depositAmount,
		pointsUsed:    pointsUsed,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func Reconstruct(
	id, customerID, shopID uuid.UUID,
	serviceIDs []uuid.UUID,
	slot schedule.TimeRange,
	status Status,
	totalAmount, depositAmount int64,
	finalAmount *int64,
	pointsUsed int64,
	version int32,
	confirmedAt, completedAt, cancelledAt, noShowAt *time.Time,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:            id,
		customerID:    customerID,
		shopID:        shopID,
		serviceIDs:    serviceIDs,
		slot:          slot,
		status:        status,
		totalAmount:   totalAmount,
		depositAmount: depositAmount,
		finalAmount:   finalAmount,
		pointsUsed:    pointsUsed,
		version:       version,
		confirmedAt:   confirmedAt,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
		noShowAt:      noShowAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Confirm is the shop-owner acknowledgement. Deposit payment is deliberately
// not a precondition here.
func (r *Reservation) Confirm(now time.Time) error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return ErrInvalidTransition
	}
	r.status = StatusConfirmed
	r.confirmedAt = &now
	r.updatedAt = now
	return nil
}

// Complete accepts a shop-adjusted final amount, bounded to
// totalAmount*(1±adjustLimit).
func (r *Reservation) Complete(now time.Time, finalAmount int64, adjustLimit decimal.Decimal) error {
	if !r.status.CanTransitionTo(StatusCompleted) {
		return ErrInvalidTransition
	}
	if finalAmount < 0 {
		return ErrNegativeAmount
	}

	total := decimal.NewFromInt(r.totalAmount)
	lower := total.Mul(decimal.NewFromInt(1).Sub(adjustLimit))
	upper := total.Mul(decimal.NewFromInt(1).Add(adjustLimit))
	final := decimal.NewFromInt(finalAmount)
	if final.LessThan(lower) || final.GreaterThan(upper) {
		return ErrFinalAmountOutOfBounds
	}

	r.status = StatusCompleted
	r.finalAmount = &finalAmount
	r.completedAt = &now
	r.updatedAt = now
	return nil
}

func (r *Reservation) CancelByUser(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCancelledByUser) {
		return ErrInvalidTransition
	}
	r.status = StatusCancelledByUser
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

func (r *Reservation) CancelByShop(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCancelledByShop) {
		return ErrInvalidTransition
	}
	r.status = StatusCancelledByShop
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// MarkNoShow fires only once the grace period after the scheduled start has
// elapsed, and only while the reservation is still confirmed.
func (r *Reservation) MarkNoShow(now time.Time, grace time.Duration) error {
	if !r.status.CanTransitionTo(StatusNoShow) {
		return ErrInvalidTransition
	}
	if now.Before(r.slot.Start().Add(grace)) {
		return ErrNoShowTooEarly
	}
	r.status = StatusNoShow
	r.noShowAt = &now
	r.updatedAt = now
	return nil
}

// SettledAmount is the amount the customer ultimately owes: the adjusted
// final amount once completed, the original total otherwise.
func (r *Reservation) SettledAmount() int64 {
	if r.finalAmount != nil {
		return *r.finalAmount
	}
	return r.totalAmount
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) CustomerID() uuid.UUID    { return r.customerID }
func (r *Reservation) ShopID() uuid.UUID        { return r.shopID }
func (r *Reservation) ServiceIDs() []uuid.UUID  { return r.serviceIDs }
func (r *Reservation) Slot() schedule.TimeRange { return r.slot }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) TotalAmount() int64       { return r.totalAmount }
func (r *Reservation) DepositAmount() int64     { return r.depositAmount }
func (r *Reservation) FinalAmount() *int64      { return r.finalAmount }
func (r *Reservation) PointsUsed() int64        { return r.pointsUsed }
func (r *Reservation) Version() int32           { return r.version }
func (r *Reservation) ConfirmedAt() *time.Time  { return r.confirmedAt }
func (r *Reservation) CompletedAt() *time.Time  { return r.completedAt }
func (r *Reservation) CancelledAt() *time.Time  { return r.cancelledAt }
func (r *Reservation) NoShowAt() *time.Time     { return r.noShowAt }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }
