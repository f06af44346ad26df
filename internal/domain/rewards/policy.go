package rewards

import (
	"errors"
	"sort"
)

var ErrUnknownStage = errors.New("unknown accrual stage")

// Stage is the order status at which a seller's rewards accrue. The source
// systems disagree on this, so it is seller configuration rather than a
// hard-coded lifecycle hook.
type Stage string

const (
	StageConfirmed Stage = "confirmed"
	StageCompleted Stage = "completed"
)

func (s Stage) IsValid() bool {
	return s == StageConfirmed || s == StageCompleted
}

func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if !s.IsValid() {
		return "", ErrUnknownStage
	}
	return s, nil
}

// Tier grants a multiplier once a buyer's cumulative spend with the seller
// reaches the threshold. Tiers are evaluated highest-threshold-first.
type Tier struct {
	MinCumulativeSpendCents int64
	Multiplier              float64
}

// Policy is a seller's rewards configuration.
type Policy struct {
	Enabled               bool
	Stage                 Stage
	PointsPerCurrencyUnit int64 // points earned per whole currency unit (100 cents)
	MinimumPurchaseCents  int64
	Tiers                 []Tier
}

const centsPerCurrencyUnit = 100

// Calculate returns the points earned for an order total, or 0 when the order
// does not qualify. cumulativeSpendCents is the buyer's lifetime spend with
// this seller prior to the order, used for tier selection.
func (p Policy) Calculate(totalCents, cumulativeSpendCents int64) int64 {
	if !p.Enabled || p.PointsPerCurrencyUnit <= 0 {
		return 0
	}
	if totalCents < p.MinimumPurchaseCents {
		return 0
	}

	base := totalCents / centsPerCurrencyUnit * p.PointsPerCurrencyUnit
	multiplier := p.tierMultiplier(cumulativeSpendCents)
	return int64(float64(base) * multiplier)
}

func (p Policy) tierMultiplier(cumulativeSpendCents int64) float64 {
	if len(p.Tiers) == 0 {
		return 1.0
	}

	tiers := make([]Tier, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinCumulativeSpendCents > tiers[j].MinCumulativeSpendCents
	})

	for _, t := range tiers {
		if cumulativeSpendCents >= t.MinCumulativeSpendCents && t.Multiplier > 0 {
			return t.Multiplier
		}
	}
	return 1.0
}

// Reasons recorded on points ledger entries. The (order, reason) pair is unique
// in storage, which is what makes accrual idempotent.
const (
	ReasonEarn       = "earn"
	ReasonCompensate = "compensate_cancellation"
)
