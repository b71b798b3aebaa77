package response

import (
	"time"

	"beautybook/internal/usecase/queries"
)

type ReferralStatusResponse struct {
	TotalReferrals      int        `json:"totalReferrals"`
	SuccessfulReferrals int        `json:"successfulReferrals"`
	WasReferred         bool       `json:"wasReferred"`
	IsInfluencer        bool       `json:"isInfluencer"`
	PromotedAt          *time.Time `json:"promotedAt,omitempty"`
}

func FromReferralStatus(s *queries.ReferralStatus) *ReferralStatusResponse {
	return &ReferralStatusResponse{
		TotalReferrals:      s.TotalReferrals,
		SuccessfulReferrals: s.SuccessfulReferrals,
		WasReferred:         s.WasReferred,
		IsInfluencer:        s.IsInfluencer,
		PromotedAt:          s.PromotedAt,
	}
}
