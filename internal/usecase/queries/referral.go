package queries

import (
	"context"
	"time"

	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReferralStatus struct {
	TotalReferrals      int
	SuccessfulReferrals int
	WasReferred         bool
	IsInfluencer        bool
	PromotedAt          *time.Time
}

type ReferralQueries struct {
	runner    shared.TxRunner
	referrals ReferralReader
}

func NewReferralQueries(runner shared.TxRunner, referrals ReferralReader) *ReferralQueries {
	return &ReferralQueries{runner: runner, referrals: referrals}
}

// GetStatus summarizes a user's referral standing: how many people they
// brought in, how many converted, and whether they crossed into influencer
// status.
func (q *ReferralQueries) GetStatus(ctx context.Context, userID uuid.UUID) (*ReferralStatus, error) {
	dbtx := q.runner.DB()

	total, successful, err := q.referrals.ReferralCounts(ctx, dbtx, userID)
	if err != nil {
		return nil, err
	}
	wasReferred, err := q.referrals.WasReferred(ctx, dbtx, userID)
	if err != nil {
		return nil, err
	}
	influencer, err := q.referrals.GetInfluencer(ctx, dbtx, userID)
	if err != nil {
		return nil, err
	}

	status := &ReferralStatus{
		TotalReferrals:      total,
		SuccessfulReferrals: successful,
		WasReferred:         wasReferred,
	}
	if influencer != nil {
		status.IsInfluencer = true
		promotedAt := influencer.PromotedAt
		status.PromotedAt = &promotedAt
	}
	return status, nil
}
