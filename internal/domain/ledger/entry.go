package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNonPositiveAmount  = errors.New("credit amount must be positive")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOverConsumption    = errors.New("consumption exceeds remaining unconsumed")
)

type Kind string

const (
	KindEarn          Kind = "earn"
	KindReferralBonus Kind = "referral_bonus"
	KindAdjustment    Kind = "adjustment"
	KindUse           Kind = "use"
	KindExpire        Kind = "expire"
)

// IsCredit reports whether entries of this kind carry spendable balance.
func (k Kind) IsCredit() bool {
	switch k {
	case KindEarn, KindReferralBonus, KindAdjustment:
		return true
	default:
		return false
	}
}

// Entry is one immutable ledger row. The only field that ever changes after
// append is remainingUnconsumed, and it only decreases.
type Entry struct {
	id                  uuid.UUID
	userID              uuid.UUID
	amount              int64 // signed, minor currency-equivalent units
	kind                Kind
	sourceReservationID *uuid.UUID
	sourceEntryID       *uuid.UUID // set on expire entries, pointing at the reversed credit
	remainingUnconsumed int64
	availableFrom       time.Time
	expiresAt           time.Time
	createdAt           time.Time
}

func newCredit(userID uuid.UUID, amount int64, kind Kind, reservationID *uuid.UUID, availableFrom, expiresAt, now time.Time) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	return &Entry{
		id:                  uuid.New(),
		userID:              userID,
		amount:              amount,
		kind:                kind,
		sourceReservationID: reservationID,
		remainingUnconsumed: amount,
		availableFrom:       availableFrom,
		expiresAt:           expiresAt,
		createdAt:           now,
	}, nil
}

// NewEarnEntry credits points for a completed reservation. Points become
// spendable after the availability delay and lapse after the lifetime, both
// measured from completion time.
func NewEarnEntry(userID, reservationID uuid.UUID, points int64, completedAt time.Time, delay, lifetime time.Duration) (*Entry, error) {
	resID := reservationID
	return newCredit(userID, points, KindEarn, &resID, completedAt.Add(delay), completedAt.Add(lifetime), completedAt)
}

func NewReferralBonusEntry(referrerID, reservationID uuid.UUID, points int64, qualifiedAt time.Time, delay, lifetime time.Duration) (*Entry, error) {
	resID := reservationID
	return newCredit(referrerID, points, KindReferralBonus, &resID, qualifiedAt.Add(delay), qualifiedAt.Add(lifetime), qualifiedAt)
}

func NewAdjustmentEntry(userID uuid.UUID, points int64, availableFrom, expiresAt, now time.Time) (*Entry, error) {
	return newCredit(userID, points, KindAdjustment, nil, availableFrom, expiresAt, now)
}

// NewUseEntry records a spend as a negative row. The matching decrements of
// credit rows are applied separately by the consumption plan.
func NewUseEntry(userID uuid.UUID, amount int64, reservationID *uuid.UUID, now time.Time) (*Entry, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	return &Entry{
		id:                  uuid.New(),
		userID:              userID,
		amount:              -amount,
		kind:                KindUse,
		sourceReservationID: reservationID,
		availableFrom:       now,
		expiresAt:           now,
		createdAt:           now,
	}, nil
}

// NewExpireEntry reverses the unconsumed remainder of a lapsed credit entry.
func NewExpireEntry(credit *Entry, now time.Time) (*Entry, error) {
	if credit.remainingUnconsumed <= 0 {
		return nil, ErrNonPositiveAmount
	}
	creditID := credit.id
	return &Entry{
		id:                  uuid.New(),
		userID:              credit.userID,
		amount:              -credit.remainingUnconsumed,
		kind:                KindExpire,
		sourceReservationID: credit.sourceReservationID,
		sourceEntryID:       &creditID,
		availableFrom:       now,
		expiresAt:           now,
		createdAt:           now,
	}, nil
}

func ReconstructEntry(
	id, userID uuid.UUID,
	amount int64,
	kind Kind,
	sourceReservationID, sourceEntryID *uuid.UUID,
	remainingUnconsumed int64,
	availableFrom, expiresAt, createdAt time.Time,
) *Entry {
	return &Entry{
		id:                  id,
		userID:              userID,
		amount:              amount,
		kind:                kind,
		sourceReservationID: sourceReservationID,
		sourceEntryID:       sourceEntryID,
		remainingUnconsumed: remainingUnconsumed,
		availableFrom:       availableFrom,
		expiresAt:           expiresAt,
		createdAt:           createdAt,
	}
}

// SpendableAt reports whether the entry can cover a spend at the given time.
func (e *Entry) SpendableAt(now time.Time) bool {
	return e.kind.IsCredit() &&
		e.remainingUnconsumed > 0 &&
		!e.availableFrom.After(now) &&
		e.expiresAt.After(now)
}

// LapsedAt reports whether the entry still holds credit past its expiry.
func (e *Entry) LapsedAt(now time.Time) bool {
	return e.kind.IsCredit() && e.remainingUnconsumed > 0 && !e.expiresAt.After(now)
}

func (e *Entry) consume(amount int64) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if amount > e.remainingUnconsumed {
		return ErrOverConsumption
	}
	e.remainingUnconsumed -= amount
	return nil
}

func (e *Entry) ID() uuid.UUID                   { return e.id }
func (e *Entry) UserID() uuid.UUID               { return e.userID }
func (e *Entry) Amount() int64                   { return e.amount }
func (e *Entry) Kind() Kind                      { return e.kind }
func (e *Entry) SourceReservationID() *uuid.UUID { return e.sourceReservationID }
func (e *Entry) SourceEntryID() *uuid.UUID       { return e.sourceEntryID }
func (e *Entry) RemainingUnconsumed() int64      { return e.remainingUnconsumed }
func (e *Entry) AvailableFrom() time.Time        { return e.availableFrom }
func (e *Entry) ExpiresAt() time.Time            { return e.expiresAt }
func (e *Entry) CreatedAt() time.Time            { return e.createdAt }

// Creditable computes the points earned for a settled amount:
// floor(min(amount, cap) * earnRate * multiplier). A non-influencer passes
// multiplier 1.
func Creditable(amount, capAmount int64, earnRate, multiplier decimal.Decimal) int64 {
	base := amount
	if capAmount > 0 && base > capAmount {
		base = capAmount
	}
	if base <= 0 {
		return 0
	}
	return decimal.NewFromInt(base).Mul(earnRate).Mul(multiplier).Floor().IntPart()
}
