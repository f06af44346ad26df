//go:build unit

package rewards_test

import (
	"testing"

	"pasarlink/internal/domain/rewards"

	"github.com/stretchr/testify/assert"
)

func basePolicy() rewards.Policy {
	return rewards.Policy{
		Enabled:               true,
		Stage:                 rewards.StageCompleted,
		PointsPerCurrencyUnit: 1,
		MinimumPurchaseCents:  1000,
	}
}

func TestCalculate(t *testing.T) {
	t.Run("one point per currency unit", func(t *testing.T) {
		p := basePolicy()
		assert.Equal(t, int64(60), p.Calculate(6000, 0))
	})

	t.Run("fractional currency units are floored", func(t *testing.T) {
		p := basePolicy()
		assert.Equal(t, int64(19), p.Calculate(1999, 0))
	})

	t.Run("below minimum purchase earns nothing", func(t *testing.T) {
		p := basePolicy()
		assert.Equal(t, int64(0), p.Calculate(999, 0))
		assert.Equal(t, int64(10), p.Calculate(1000, 0))
	})

	t.Run("disabled seller earns nothing", func(t *testing.T) {
		p := basePolicy()
		p.Enabled = false
		assert.Equal(t, int64(0), p.Calculate(6000, 0))
	})

	t.Run("tier multiplier selected by cumulative spend", func(t *testing.T) {
		p := basePolicy()
		p.Tiers = []rewards.Tier{
			{MinCumulativeSpendCents: 100_000, Multiplier: 1.5},
			{MinCumulativeSpendCents: 500_000, Multiplier: 2.0},
		}

		assert.Equal(t, int64(60), p.Calculate(6000, 0), "no tier reached")
		assert.Equal(t, int64(90), p.Calculate(6000, 100_000), "silver tier")
		assert.Equal(t, int64(120), p.Calculate(6000, 750_000), "gold tier")
	})

	t.Run("tier order in config does not matter", func(t *testing.T) {
		p := basePolicy()
		p.Tiers = []rewards.Tier{
			{MinCumulativeSpendCents: 500_000, Multiplier: 2.0},
			{MinCumulativeSpendCents: 100_000, Multiplier: 1.5},
		}
		assert.Equal(t, int64(90), p.Calculate(6000, 200_000))
	})
}

func TestParseStage(t *testing.T) {
	for _, raw := range []string{"confirmed", "completed"} {
		s, err := rewards.ParseStage(raw)
		assert.NoError(t, err)
		assert.True(t, s.IsValid())
	}
	_, err := rewards.ParseStage("delivered")
	assert.ErrorIs(t, err, rewards.ErrUnknownStage)
}
