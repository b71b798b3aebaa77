package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNegativeAmount   = errors.New("payment amount cannot be negative")
	ErrAlreadySettled   = errors.New("payment already settled")
	ErrNotPaid          = errors.New("payment is not in paid status")
	ErrEmptyExternalRef = errors.New("external reference is required")
)

type Stage string

const (
	StageDeposit Stage = "deposit"
	StageFinal   Stage = "final"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Record tracks one payment leg of a reservation. externalReference doubles
// as the idempotency key for gateway confirmations.
type Record struct {
	id                uuid.UUID
	reservationID     uuid.UUID
	stage             Stage
	amount            int64
	status            Status
	externalReference string
	paidAt            *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

func NewRecord(reservationID uuid.UUID, stage Stage, amount int64, externalReference string, now time.Time) (*Record, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if externalReference == "" {
		return nil, ErrEmptyExternalRef
	}
	return &Record{
		id:                uuid.New(),
		reservationID:     reservationID,
		stage:             stage,
		amount:            amount,
		status:            StatusPending,
		externalReference: externalReference,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func Reconstruct(
	id, reservationID uuid.UUID,
	stage Stage,
	amount int64,
	status Status,
	externalReference string,
	paidAt *time.Time,
	createdAt, updatedAt time.Time,
) *Record {
	return &Record{
		id:                id,
		reservationID:     reservationID,
		stage:             stage,
		amount:            amount,
		status:            status,
		externalReference: externalReference,
		paidAt:            paidAt,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// MarkPaid settles a pending record. Settling twice returns ErrAlreadySettled
// so duplicate webhook deliveries can be recognized and dropped.
func (r *Record) MarkPaid(now time.Time) error {
	if r.status != StatusPending {
		return ErrAlreadySettled
	}
	r.status = StatusPaid
	r.paidAt = &now
	r.updatedAt = now
	return nil
}

func (r *Record) MarkFailed(now time.Time) error {
	if r.status != StatusPending {
		return ErrAlreadySettled
	}
	r.status = StatusFailed
	r.updatedAt = now
	return nil
}

func (r *Record) MarkRefunded(now time.Time) error {
	if r.status != StatusPaid {
		return ErrNotPaid
	}
	r.status = StatusRefunded
	r.updatedAt = now
	return nil
}

func (r *Record) IsPaid() bool {
	return r.status == StatusPaid
}

func (r *Record) ID() uuid.UUID             { return r.id }
func (r *Record) ReservationID() uuid.UUID  { return r.reservationID }
func (r *Record) Stage() Stage              { return r.stage }
func (r *Record) Amount() int64             { return r.amount }
func (r *Record) Status() Status            { return r.status }
func (r *Record) ExternalReference() string { return r.externalReference }
func (r *Record) PaidAt() *time.Time        { return r.paidAt }
func (r *Record) CreatedAt() time.Time      { return r.createdAt }
func (r *Record) UpdatedAt() time.Time      { return r.updatedAt }
