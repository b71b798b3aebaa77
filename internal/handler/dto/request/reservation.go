package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	ShopID     uuid.UUID   `json:"shop_id" binding:"required"`
	ServiceIDs []uuid.UUID `json:"service_ids" binding:"required,min=1"`
	StartTime  time.Time   `json:"start_time" binding:"required"`
	UsePoints  int64       `json:"use_points" binding:"gte=0"`
}

type CompleteReservationRequest struct {
	FinalAmount int64 `json:"final_amount" binding:"required,gt=0"`
}
