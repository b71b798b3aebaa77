package response

import (
	"time"

	"beautybook/internal/usecase/queries"

	"github.com/google/uuid"
)

type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityResponse struct {
	ShopID          uuid.UUID      `json:"shopId"`
	Date            string         `json:"date"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

func FromAvailability(out *queries.AvailabilityOutput) *AvailabilityResponse {
	resp := &AvailabilityResponse{
		ShopID:          out.ShopID,
		Date:            out.Date.Format("2006-01-02"),
		DurationMinutes: int(out.Duration.Minutes()),
		Slots:           make([]SlotResponse, 0, len(out.Slots)),
	}
	for _, s := range out.Slots {
		resp.Slots = append(resp.Slots, SlotResponse{Start: s.Start, End: s.End})
	}
	return resp
}
