package request

import "github.com/google/uuid"

type RegisterReferralRequest struct {
	ReferrerID   uuid.UUID `json:"referrer_id" binding:"required"`
	ReferralCode string    `json:"referral_code" binding:"required,max=32"`
}
