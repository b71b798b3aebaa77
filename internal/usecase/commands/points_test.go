//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/domain/ledger"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/pkg/config"
	"beautybook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointCommands_Use(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	credit := func(t *testing.T, amount int64, availableFrom time.Time) *ledger.Entry {
		t.Helper()
		e, err := ledger.NewAdjustmentEntry(userID, amount, availableFrom, now.Add(365*24*time.Hour), availableFrom)
		require.NoError(t, err)
		return e
	}

	t.Run("consumes credits oldest-eligible-first", func(t *testing.T) {
		older := credit(t, 2000, now.Add(-48*time.Hour))
		newer := credit(t, 5000, now.Add(-time.Hour))
		entries := newFakeLedger(newer, older)
		outbox := &fakeOutbox{}
		cmd := commands.NewPointCommands(fakeRunner{}, entries, outbox, clock.NewMockClock(now), config.NewTestPolicy())

		err := cmd.Use(context.Background(), userID, 3000, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(2000), entries.decrements[older.ID()])
		assert.Equal(t, int64(1000), entries.decrements[newer.ID()])

		require.Len(t, entries.appended, 1)
		assert.Equal(t, int64(-3000), entries.appended[0].Amount())
		assert.Equal(t, ledger.KindUse, entries.appended[0].Kind())
	})

	t.Run("is all-or-nothing when the balance cannot cover the spend", func(t *testing.T) {
		entries := newFakeLedger(credit(t, 1000, now.Add(-time.Hour)))
		cmd := commands.NewPointCommands(fakeRunner{}, entries, &fakeOutbox{}, clock.NewMockClock(now), config.NewTestPolicy())

		err := cmd.Use(context.Background(), userID, 3000, nil)

		assert.ErrorIs(t, err, commands.ErrInsufficientPoints)
		assert.Empty(t, entries.decrements)
		assert.Empty(t, entries.appended)
	})

	t.Run("ignores credits still inside the availability delay", func(t *testing.T) {
		entries := newFakeLedger(credit(t, 5000, now.Add(time.Hour)))
		cmd := commands.NewPointCommands(fakeRunner{}, entries, &fakeOutbox{}, clock.NewMockClock(now), config.NewTestPolicy())

		err := cmd.Use(context.Background(), userID, 3000, nil)

		assert.ErrorIs(t, err, commands.ErrInsufficientPoints)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		cmd := commands.NewPointCommands(fakeRunner{}, newFakeLedger(), &fakeOutbox{}, clock.NewMockClock(now), config.NewTestPolicy())

		err := cmd.Use(context.Background(), userID, 0, nil)

		assert.ErrorIs(t, err, commands.ErrValidation)
	})
}

func TestPointCommands_SweepExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("reverses the unconsumed remainder of lapsed credits", func(t *testing.T) {
		lapsed, err := ledger.NewAdjustmentEntry(userID, 4000, now.Add(-400*24*time.Hour), now.Add(-time.Hour), now.Add(-400*24*time.Hour))
		require.NoError(t, err)

		entries := newFakeLedger()
		entries.lapsed = []*ledger.Entry{lapsed}
		outbox := &fakeOutbox{}
		cmd := commands.NewPointCommands(fakeRunner{}, entries, outbox, clock.NewMockClock(now), config.NewTestPolicy())

		swept, err := cmd.SweepExpired(context.Background(), 100)

		require.NoError(t, err)
		assert.Equal(t, 1, swept)

		require.Len(t, entries.appended, 1)
		expire := entries.appended[0]
		assert.Equal(t, ledger.KindExpire, expire.Kind())
		assert.Equal(t, int64(-4000), expire.Amount())
		require.NotNil(t, expire.SourceEntryID())
		assert.Equal(t, lapsed.ID(), *expire.SourceEntryID())

		assert.Equal(t, int64(4000), entries.decrements[lapsed.ID()])
		assert.Contains(t, outbox.topics, commands.TopicPointsExpired)
	})

	t.Run("does nothing when no credits have lapsed", func(t *testing.T) {
		entries := newFakeLedger()
		cmd := commands.NewPointCommands(fakeRunner{}, entries, &fakeOutbox{}, clock.NewMockClock(now), config.NewTestPolicy())

		swept, err := cmd.SweepExpired(context.Background(), 100)

		require.NoError(t, err)
		assert.Equal(t, 0, swept)
		assert.Empty(t, entries.appended)
	})
}
