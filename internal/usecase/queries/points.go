package queries

import (
	"context"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

type PointBalance struct {
	Available int64
	Pending   int64
}

type PointHistoryEntry struct {
	ID            uuid.UUID
	Amount        int64
	Kind          string
	ReservationID *uuid.UUID
	AvailableFrom time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type PointQueries struct {
	runner  shared.TxRunner
	entries LedgerReader
	clk     clock.Clock
}

func NewPointQueries(runner shared.TxRunner, entries LedgerReader, clk clock.Clock) *PointQueries {
	return &PointQueries{runner: runner, entries: entries, clk: clk}
}

// GetBalance folds the user's ledger at the current instant. Available and
// pending are derived, never stored, so the answer is whatever the entries
// say right now.
func (q *PointQueries) GetBalance(ctx context.Context, userID uuid.UUID) (*PointBalance, error) {
	entries, err := q.entries.ListByUser(ctx, q.runner.DB(), userID)
	if err != nil {
		return nil, err
	}
	b := ledger.BalanceOf(entries, q.clk.Now())
	return &PointBalance{Available: b.Available, Pending: b.Pending}, nil
}

// GetHistory returns the raw ledger entries, newest first as the repository
// orders them.
func (q *PointQueries) GetHistory(ctx context.Context, userID uuid.UUID) ([]PointHistoryEntry, error) {
	entries, err := q.entries.ListByUser(ctx, q.runner.DB(), userID)
	if err != nil {
		return nil, err
	}

	out := make([]PointHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, PointHistoryEntry{
			ID:            e.ID(),
			Amount:        e.Amount(),
			Kind:          string(e.Kind()),
			ReservationID: e.SourceReservationID(),
			AvailableFrom: e.AvailableFrom(),
			ExpiresAt:     e.ExpiresAt(),
			CreatedAt:     e.CreatedAt(),
		})
	}
	return out, nil
}
