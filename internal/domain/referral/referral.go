package referral

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSelfReferral     = errors.New("self-referral is not allowed")
	ErrAlreadyReferred  = errors.New("user already has a referrer")
	ErrDepthExceeded    = errors.New("referral depth is capped at one level")
	ErrAlreadyQualified = errors.New("referral already qualified")
)

// Relationship links a referee to the single referrer whose code they used.
// qualifiedAt is set exactly once, on the referee's first completed and paid
// reservation; it is the idempotency guard for bonus issuance.
type Relationship struct {
	referrerID   uuid.UUID
	refereeID    uuid.UUID
	referralCode string
	createdAt    time.Time
	qualifiedAt  *time.Time
}

// NewRelationship enforces the abuse guards: no self-referral, and no
// multi-level chains (a referee who was themselves referred may still refer
// others, but the payout never cascades upward — referrerWasReferred only
// matters for payout depth, which is handled by crediting the direct
// referrer alone; the relationship itself is always legal at depth 1).
func NewRelationship(referrerID, refereeID uuid.UUID, code string, now time.Time) (*Relationship, error) {
	if referrerID == refereeID {
		return nil, ErrSelfReferral
	}
	return &Relationship{
		referrerID:   referrerID,
		refereeID:    refereeID,
		referralCode: code,
		createdAt:    now,
	}, nil
}

func ReconstructRelationship(referrerID, refereeID uuid.UUID, code string, createdAt time.Time, qualifiedAt *time.Time) *Relationship {
	return &Relationship{
		referrerID:   referrerID,
		refereeID:    refereeID,
		referralCode: code,
		createdAt:    createdAt,
		qualifiedAt:  qualifiedAt,
	}
}

// Qualify marks the referee's conversion. A second call fails, which makes
// bonus issuance idempotent per referee.
func (r *Relationship) Qualify(now time.Time) error {
	if r.qualifiedAt != nil {
		return ErrAlreadyQualified
	}
	r.qualifiedAt = &now
	return nil
}

func (r *Relationship) IsQualified() bool {
	return r.qualifiedAt != nil
}

func (r *Relationship) ReferrerID() uuid.UUID   { return r.referrerID }
func (r *Relationship) RefereeID() uuid.UUID    { return r.refereeID }
func (r *Relationship) ReferralCode() string    { return r.referralCode }
func (r *Relationship) CreatedAt() time.Time    { return r.createdAt }
func (r *Relationship) QualifiedAt() *time.Time { return r.qualifiedAt }

// BonusPoints computes the referrer's one-shot bonus:
// floor(floor(min(amount, cap) * earnRate) * referralRate). The base uses the
// referee's plain earning rate, never an influencer multiplier, so promoted
// referrers cannot compound their multiplier into bonuses.
func BonusPoints(finalAmount, capAmount int64, earnRate, referralRate decimal.Decimal) int64 {
	base := finalAmount
	if capAmount > 0 && base > capAmount {
		base = capAmount
	}
	if base <= 0 {
		return 0
	}
	basePoints := decimal.NewFromInt(base).Mul(earnRate).Floor()
	return basePoints.Mul(referralRate).Floor().IntPart()
}

// ShouldPromote decides influencer promotion: the referrer needs at least
// threshold referrals and every single one of them must have converted.
func ShouldPromote(totalReferrals, successfulReferrals, threshold int) bool {
	return totalReferrals >= threshold && successfulReferrals == totalReferrals
}

// InfluencerStatus is monotonic: once promoted there is no demotion path.
type InfluencerStatus struct {
	UserID     uuid.UUID
	PromotedAt time.Time
	Multiplier decimal.Decimal
}
