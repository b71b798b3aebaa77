package repository

import (
	"context"
	"time"

	"beautybook/internal/domain/referral"
	"beautybook/internal/infra"
	"beautybook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReferralRepository struct {
	db db.DBTX
}

func NewReferralRepository(dbtx db.DBTX) *ReferralRepository {
	return &ReferralRepository{db: dbtx}
}

// Create inserts the relationship. The referee_id primary key enforces "at
// most one referrer per user"; a duplicate surfaces as KindDuplicateKey.
func (r *ReferralRepository) Create(ctx context.Context, tx db.DBTX, rel *referral.Relationship) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO referrals (referrer_id, referee_id, referral_code, created_at, qualified_at)
		VALUES ($1, $2, $3, $4, $5)`,
		rel.ReferrerID(), rel.RefereeID(), rel.ReferralCode(), rel.CreatedAt(), rel.QualifiedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create referral", err, infra.KindFromPgError(err))
	}
	return nil
}

// FindByRefereeForUpdate locks the relationship row so qualification (and the
// bonus it triggers) can only happen once.
func (r *ReferralRepository) FindByRefereeForUpdate(ctx context.Context, tx db.DBTX, refereeID uuid.UUID) (*referral.Relationship, error) {
	row := tx.QueryRow(ctx, `
		SELECT referrer_id, referee_id, referral_code, created_at, qualified_at
		FROM referrals
		WHERE referee_id = $1
		FOR UPDATE`,
		refereeID,
	)

	var (
		referrerID, scannedRefereeID uuid.UUID
		code                         string
		createdAt                    time.Time
		qualifiedAt                  *time.Time
	)
	if err := row.Scan(&referrerID, &scannedRefereeID, &code, &createdAt, &qualifiedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("referral not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find referral", err)
	}

	return referral.ReconstructRelationship(referrerID, scannedRefereeID, code, createdAt, qualifiedAt), nil
}

func (r *ReferralRepository) SetQualified(ctx context.Context, tx db.DBTX, rel *referral.Relationship) error {
	tag, err := tx.Exec(ctx, `
		UPDATE referrals
		SET qualified_at = $1
		WHERE referee_id = $2 AND qualified_at IS NULL`,
		rel.QualifiedAt(), rel.RefereeID(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to qualify referral", err, infra.KindFromPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("referral already qualified", nil, infra.KindConflict)
	}
	return nil
}

// ReferralCounts returns the referrer's total relationships and how many of
// them have converted.
func (r *ReferralRepository) ReferralCounts(ctx context.Context, dbtx db.DBTX, referrerID uuid.UUID) (total, successful int, err error) {
	err = dbtx.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(qualified_at)
		FROM referrals
		WHERE referrer_id = $1`,
		referrerID,
	).Scan(&total, &successful)
	if err != nil {
		return 0, 0, infra.WrapRepoErr("failed to count referrals", err)
	}
	return total, successful, nil
}

// WasReferred reports whether the user themselves arrived through a referral
// code (used to cap payout depth at one level).
func (r *ReferralRepository) WasReferred(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (bool, error) {
	var exists bool
	err := dbtx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referrals WHERE referee_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check referral ancestry", err)
	}
	return exists, nil
}

func (r *ReferralRepository) GetInfluencer(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) (*referral.InfluencerStatus, error) {
	var (
		promotedAt time.Time
		multiplier decimal.Decimal
	)
	err := dbtx.QueryRow(ctx, `
		SELECT promoted_at, multiplier
		FROM influencer_status
		WHERE user_id = $1`,
		userID,
	).Scan(&promotedAt, &multiplier)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to get influencer status", err)
	}
	return &referral.InfluencerStatus{UserID: userID, PromotedAt: promotedAt, Multiplier: multiplier}, nil
}

// Promote is idempotent: re-evaluating after later referrals never demotes or
// re-inserts.
func (r *ReferralRepository) Promote(ctx context.Context, tx db.DBTX, status *referral.InfluencerStatus) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO influencer_status (user_id, promoted_at, multiplier)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		status.UserID, status.PromotedAt, status.Multiplier,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to promote influencer", err, infra.KindFromPgError(err))
	}
	return nil
}
