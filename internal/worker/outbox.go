// Package worker hosts the background loops: outbox publishing and the
// periodic sweeps over reservations and point entries. Each worker owns a
// ticker goroutine started and stopped through the application lifecycle.
package worker

import (
	"context"
	"log/slog"
	"time"

	"beautybook/internal/infra/db"
	"beautybook/internal/infra/repository"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/usecase/shared"

	"github.com/google/uuid"
)

const outboxBatchSize = 100

type OutboxSource interface {
	PendingForUpdate(ctx context.Context, tx db.DBTX, now time.Time, limit int32) ([]*repository.OutboxEvent, error)
	MarkPublished(ctx context.Context, tx db.DBTX, eventID uuid.UUID, now time.Time) error
	RecordFailure(ctx context.Context, tx db.DBTX, eventID uuid.UUID, publishErr string, now time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, eventID uuid.UUID, topic string, payload []byte) error
}

// OutboxWorker drains queued outbox rows to the event bus. Rows are claimed
// with SKIP LOCKED, so multiple instances can run the loop concurrently; a
// failed publish stays queued and is retried on a later tick.
type OutboxWorker struct {
	runner   shared.TxRunner
	outbox   OutboxSource
	bus      EventPublisher
	clk      clock.Clock
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewOutboxWorker(runner shared.TxRunner, outbox OutboxSource, bus EventPublisher, clk clock.Clock, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		runner:   runner,
		outbox:   outbox,
		bus:      bus,
		clk:      clk,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *OutboxWorker) Start() {
	go w.loop()
}

func (w *OutboxWorker) Stop() {
	close(w.stop)
	<-w.done
}

func (w *OutboxWorker) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			published, err := w.PublishBatch(context.Background())
			if err != nil {
				slog.Error("outbox publish pass failed", "error", err.Error())
				continue
			}
			if published > 0 {
				slog.Debug("outbox events published", "count", published)
			}
		}
	}
}

// PublishBatch claims one batch of due events and pushes them to the bus.
// Publish failures are recorded per event and do not abort the batch.
func (w *OutboxWorker) PublishBatch(ctx context.Context) (int, error) {
	now := w.clk.Now()

	var published int
	err := w.runner.WithinTx(ctx, func(tx db.DBTX) error {
		events, err := w.outbox.PendingForUpdate(ctx, tx, now, outboxBatchSize)
		if err != nil {
			return err
		}
		for _, event := range events {
			if err := w.bus.Publish(ctx, event.ID, event.Topic, event.Payload); err != nil {
				slog.Warn("outbox event publish failed",
					"event_id", event.ID.String(), "topic", event.Topic, "error", err.Error())
				if err := w.outbox.RecordFailure(ctx, tx, event.ID, err.Error(), now); err != nil {
					return err
				}
				continue
			}
			if err := w.outbox.MarkPublished(ctx, tx, event.ID, now); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	return published, err
}
