//go:build unit

package worker_test

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/infra/db"
	"beautybook/internal/infra/repository"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/errs"
	"beautybook/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(tx db.DBTX) error) error { return fn(nil) }
func (fakeRunner) DB() db.DBTX                                                   { return nil }

type fakeOutbox struct {
	pending   []*repository.OutboxEvent
	published []uuid.UUID
	failures  map[uuid.UUID]string
}

func (f *fakeOutbox) PendingForUpdate(_ context.Context, _ db.DBTX, _ time.Time, _ int32) ([]*repository.OutboxEvent, error) {
	return f.pending, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, _ db.DBTX, eventID uuid.UUID, _ time.Time) error {
	f.published = append(f.published, eventID)
	return nil
}

func (f *fakeOutbox) RecordFailure(_ context.Context, _ db.DBTX, eventID uuid.UUID, publishErr string, _ time.Time) error {
	if f.failures == nil {
		f.failures = make(map[uuid.UUID]string)
	}
	f.failures[eventID] = publishErr
	return nil
}

type fakeBus struct {
	failTopics map[string]bool
	topics     []string
}

func (f *fakeBus) Publish(_ context.Context, _ uuid.UUID, topic string, _ []byte) error {
	if f.failTopics[topic] {
		return errs.New("broker unavailable")
	}
	f.topics = append(f.topics, topic)
	return nil
}

func queuedEvent(topic string) *repository.OutboxEvent {
	return &repository.OutboxEvent{
		ID:      uuid.New(),
		Topic:   topic,
		Payload: []byte(`{}`),
		Status:  repository.OutboxStatusQueued,
	}
}

func TestOutboxWorker_PublishBatch(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	t.Run("publishes queued events and marks them", func(t *testing.T) {
		outbox := &fakeOutbox{pending: []*repository.OutboxEvent{
			queuedEvent("reservation.requested"),
			queuedEvent("points.credited"),
		}}
		bus := &fakeBus{}
		w := worker.NewOutboxWorker(fakeRunner{}, outbox, bus, clk, time.Second)

		published, err := w.PublishBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, published)
		assert.Equal(t, []string{"reservation.requested", "points.credited"}, bus.topics)
		assert.Len(t, outbox.published, 2)
		assert.Empty(t, outbox.failures)
	})

	t.Run("records failure and keeps going", func(t *testing.T) {
		bad := queuedEvent("reservation.cancelled")
		good := queuedEvent("payment.settled")
		outbox := &fakeOutbox{pending: []*repository.OutboxEvent{bad, good}}
		bus := &fakeBus{failTopics: map[string]bool{"reservation.cancelled": true}}
		w := worker.NewOutboxWorker(fakeRunner{}, outbox, bus, clk, time.Second)

		published, err := w.PublishBatch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, published)
		assert.Equal(t, []uuid.UUID{good.ID}, outbox.published)
		assert.Contains(t, outbox.failures[bad.ID], "broker unavailable")
	})

	t.Run("empty queue is a no-op", func(t *testing.T) {
		outbox := &fakeOutbox{}
		bus := &fakeBus{}
		w := worker.NewOutboxWorker(fakeRunner{}, outbox, bus, clk, time.Second)

		published, err := w.PublishBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, published)
	})
}
