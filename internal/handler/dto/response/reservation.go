package response

import (
	"time"

	"beautybook/internal/usecase/commands"
	"beautybook/internal/usecase/queries"

	"github.com/google/uuid"
)

type CreateReservationResponse struct {
	ID            uuid.UUID `json:"id"`
	SlotStart     time.Time `json:"slotStart"`
	SlotEnd       time.Time `json:"slotEnd"`
	TotalAmount   int64     `json:"totalAmount"`
	DepositAmount int64     `json:"depositAmount"`
	PointsUsed    int64     `json:"pointsUsed"`
	Replayed      bool      `json:"replayed"`
}

func FromCreateReservation(out *commands.CreateReservationOutput) *CreateReservationResponse {
	return &CreateReservationResponse{
		ID:            out.ReservationID,
		SlotStart:     out.SlotStart,
		SlotEnd:       out.SlotEnd,
		TotalAmount:   out.TotalAmount,
		DepositAmount: out.DepositAmount,
		PointsUsed:    out.PointsUsed,
		Replayed:      out.Replayed,
	}
}

type PaymentResponse struct {
	ID                uuid.UUID  `json:"id"`
	Stage             string     `json:"stage"`
	Amount            int64      `json:"amount"`
	Status            string     `json:"status"`
	ExternalReference string     `json:"externalReference"`
	PaidAt            *time.Time `json:"paidAt,omitempty"`
}

type ReservationResponse struct {
	ID            uuid.UUID         `json:"id"`
	CustomerID    uuid.UUID         `json:"customerId"`
	ShopID        uuid.UUID         `json:"shopId"`
	ServiceIDs    []uuid.UUID       `json:"serviceIds"`
	SlotStart     time.Time         `json:"slotStart"`
	SlotEnd       time.Time         `json:"slotEnd"`
	Status        string            `json:"status"`
	TotalAmount   int64             `json:"totalAmount"`
	DepositAmount int64             `json:"depositAmount"`
	FinalAmount   *int64            `json:"finalAmount,omitempty"`
	PointsUsed    int64             `json:"pointsUsed"`
	ConfirmedAt   *time.Time        `json:"confirmedAt,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	NoShowAt      *time.Time        `json:"noShowAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

func FromReservationDetail(rm *queries.ReservationDetail) *ReservationResponse {
	resp := &ReservationResponse{
		ID:            rm.ID,
		CustomerID:    rm.CustomerID,
		ShopID:        rm.ShopID,
		ServiceIDs:    rm.ServiceIDs,
		SlotStart:     rm.SlotStart,
		SlotEnd:       rm.SlotEnd,
		Status:        rm.Status,
		TotalAmount:   rm.TotalAmount,
		DepositAmount: rm.DepositAmount,
		FinalAmount:   rm.FinalAmount,
		PointsUsed:    rm.PointsUsed,
		ConfirmedAt:   rm.ConfirmedAt,
		CompletedAt:   rm.CompletedAt,
		CancelledAt:   rm.CancelledAt,
		NoShowAt:      rm.NoShowAt,
		CreatedAt:     rm.CreatedAt,
	}
	for _, p := range rm.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:                p.ID,
			Stage:             p.Stage,
			Amount:            p.Amount,
			Status:            p.Status,
			ExternalReference: p.ExternalReference,
			PaidAt:            p.PaidAt,
		})
	}
	return resp
}

type CancelReservationResponse struct {
	RefundPercentage int   `json:"refundPercentage"`
	RefundedAmount   int64 `json:"refundedAmount"`
	PointsReturned   int64 `json:"pointsReturned"`
}

func FromCancelReservation(out *commands.CancelReservationOutput) *CancelReservationResponse {
	return &CancelReservationResponse{
		RefundPercentage: out.RefundPercentage,
		RefundedAmount:   out.RefundedAmount,
		PointsReturned:   out.PointsReturned,
	}
}
