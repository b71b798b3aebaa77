package request

import "github.com/google/uuid"

type UsePointsRequest struct {
	Amount        int64      `json:"amount" binding:"required,gt=0"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
}
