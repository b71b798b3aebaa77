//go:build unit

package referral_test

import (
	"testing"
	"time"

	"beautybook/internal/domain/referral"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	earnRate     = decimal.NewFromFloat(0.025)
	referralRate = decimal.NewFromFloat(0.1)
)

func TestNewRelationship(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects self-referral", func(t *testing.T) {
		id := uuid.New()
		_, err := referral.NewRelationship(id, id, "CODE1", now)
		require.ErrorIs(t, err, referral.ErrSelfReferral)
	})

	t.Run("qualifies exactly once", func(t *testing.T) {
		rel, err := referral.NewRelationship(uuid.New(), uuid.New(), "CODE1", now)
		require.NoError(t, err)
		assert.False(t, rel.IsQualified())

		require.NoError(t, rel.Qualify(now))
		assert.True(t, rel.IsQualified())
		require.NotNil(t, rel.QualifiedAt())

		// second completed purchase by the same referee
		require.ErrorIs(t, rel.Qualify(now.Add(time.Hour)), referral.ErrAlreadyQualified)
	})
}

func TestBonusPoints(t *testing.T) {
	t.Run("first completed 200000 reservation", func(t *testing.T) {
		// floor(floor(200000 * 0.025) * 0.1) = 500
		assert.Equal(t, int64(500), referral.BonusPoints(200000, 300000, earnRate, referralRate))
	})

	t.Run("base uses cap, never the influencer multiplier", func(t *testing.T) {
		// the referrer's influencer status does not enter this computation at all
		assert.Equal(t, int64(750), referral.BonusPoints(400000, 300000, earnRate, referralRate))
	})

	t.Run("inner floor applies before the rate", func(t *testing.T) {
		// floor(1990 * 0.025) = 49; floor(49 * 0.1) = 4
		assert.Equal(t, int64(4), referral.BonusPoints(1990, 300000, earnRate, referralRate))
	})

	t.Run("zero amount yields zero", func(t *testing.T) {
		assert.Equal(t, int64(0), referral.BonusPoints(0, 300000, earnRate, referralRate))
	})
}

func TestShouldPromote(t *testing.T) {
	cases := []struct {
		name       string
		total      int
		successful int
		expected   bool
	}{
		{"below threshold", 49, 49, false},
		{"at threshold, all converted", 50, 50, true},
		{"above threshold, all converted", 60, 60, true},
		{"at threshold, one unconverted", 50, 49, false},
		{"zero referrals", 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, referral.ShouldPromote(tc.total, tc.successful, 50))
		})
	}
}
