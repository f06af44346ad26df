package repository

import (
	"context"
	"encoding/json"

	"pasarlink/internal/domain/rewards"
	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

type RewardsConfigRepository struct {
	db db.DBTX
}

func NewRewardsConfigRepository(db db.DBTX) *RewardsConfigRepository {
	return &RewardsConfigRepository{db: db}
}

type tierRow struct {
	MinCumulativeSpendCents int64   `json:"min_cumulative_spend_cents"`
	Multiplier              float64 `json:"multiplier"`
}

// FindBySeller loads the seller's rewards policy. A seller with no row gets a
// disabled policy, so callers never branch on NotFound.
func (r *RewardsConfigRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (rewards.Policy, error) {
	var (
		enabled  bool
		stageRaw string
		ppu      int64
		minCents int64
		tiersRaw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT enabled, accrual_stage, points_per_currency_unit, minimum_purchase_cents, tiers
		FROM rewards_configs
		WHERE seller_id = $1`,
		sellerID).Scan(&enabled, &stageRaw, &ppu, &minCents, &tiersRaw)
	if err != nil {
		if isNoRows(err) {
			return rewards.Policy{Enabled: false}, nil
		}
		return rewards.Policy{}, infra.WrapRepoErr("failed to load rewards config", err)
	}

	stage, err := rewards.ParseStage(stageRaw)
	if err != nil {
		return rewards.Policy{}, infra.WrapRepoErr("stored rewards config has unknown stage", err)
	}

	var tiers []tierRow
	if len(tiersRaw) > 0 {
		if err := json.Unmarshal(tiersRaw, &tiers); err != nil {
			return rewards.Policy{}, infra.WrapRepoErr("stored rewards tiers are malformed", err)
		}
	}

	policy := rewards.Policy{
		Enabled:               enabled,
		Stage:                 stage,
		PointsPerCurrencyUnit: ppu,
		MinimumPurchaseCents:  minCents,
	}
	for _, t := range tiers {
		policy.Tiers = append(policy.Tiers, rewards.Tier{
			MinCumulativeSpendCents: t.MinCumulativeSpendCents,
			Multiplier:              t.Multiplier,
		})
	}
	return policy, nil
}
