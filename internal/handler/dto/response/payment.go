package response

import "beautybook/internal/usecase/commands"

type DepositIntentResponse struct {
	ExternalReference string `json:"externalReference"`
	RedirectURL       string `json:"redirectUrl"`
	Amount            int64  `json:"amount"`
}

func FromDepositIntent(out *commands.PrepareDepositOutput) *DepositIntentResponse {
	return &DepositIntentResponse{
		ExternalReference: out.ExternalReference,
		RedirectURL:       out.RedirectURL,
		Amount:            out.Amount,
	}
}
