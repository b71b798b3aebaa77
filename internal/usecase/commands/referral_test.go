//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"beautybook/internal/infra"
	"beautybook/internal/pkg/clock"
	"beautybook/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralCommands_Register(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("links referee to referrer", func(t *testing.T) {
		referrals := &fakeReferrals{}
		cmd := commands.NewReferralCommands(fakeRunner{}, referrals, clock.NewMockClock(now))

		referrerID, refereeID := uuid.New(), uuid.New()
		err := cmd.Register(context.Background(), referrerID, refereeID, "CODE1")

		require.NoError(t, err)
		require.Len(t, referrals.created, 1)
		assert.Equal(t, referrerID, referrals.created[0].ReferrerID())
		assert.Equal(t, refereeID, referrals.created[0].RefereeID())
		assert.False(t, referrals.created[0].IsQualified())
	})

	t.Run("rejects self-referral", func(t *testing.T) {
		cmd := commands.NewReferralCommands(fakeRunner{}, &fakeReferrals{}, clock.NewMockClock(now))

		id := uuid.New()
		err := cmd.Register(context.Background(), id, id, "CODE1")

		assert.ErrorIs(t, err, commands.ErrReferralRejected)
	})

	t.Run("rejects a second referrer for the same referee", func(t *testing.T) {
		referrals := &fakeReferrals{
			createErr: infra.WrapRepoErr("duplicate referee", nil, infra.KindDuplicateKey),
		}
		cmd := commands.NewReferralCommands(fakeRunner{}, referrals, clock.NewMockClock(now))

		err := cmd.Register(context.Background(), uuid.New(), uuid.New(), "CODE1")

		assert.ErrorIs(t, err, commands.ErrReferralRejected)
	})
}
