package response

import (
	"time"

	"beautybook/internal/usecase/queries"

	"github.com/google/uuid"
)

type PointBalanceResponse struct {
	Available int64 `json:"available"`
	Pending   int64 `json:"pending"`
}

func FromPointBalance(b *queries.PointBalance) *PointBalanceResponse {
	return &PointBalanceResponse{Available: b.Available, Pending: b.Pending}
}

type PointEntryResponse struct {
	ID            uuid.UUID  `json:"id"`
	Amount        int64      `json:"amount"`
	Kind          string     `json:"kind"`
	ReservationID *uuid.UUID `json:"reservationId,omitempty"`
	AvailableFrom time.Time  `json:"availableFrom"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func FromPointHistory(entries []queries.PointHistoryEntry) []PointEntryResponse {
	out := make([]PointEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, PointEntryResponse{
			ID:            e.ID,
			Amount:        e.Amount,
			Kind:          e.Kind,
			ReservationID: e.ReservationID,
			AvailableFrom: e.AvailableFrom,
			ExpiresAt:     e.ExpiresAt,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
