package dbtest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// CreateProduct inserts an active inventory row and returns its product id.
func CreateProduct(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID, title string, unitPriceCents int64, stock int32) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO inventory (product_id, seller_id, title, unit_price_cents, stock, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)`,
		productID, sellerID, title, unitPriceCents, stock, time.Now().UTC())
	require.NoError(t, err, "failed to insert product")
	return productID
}

// CreateCourier inserts a courier row. Couriers normally self-register through
// the heartbeat endpoint; this bypasses it for setup.
func CreateCourier(t *testing.T, pool *pgxpool.Pool, courierID uuid.UUID, available bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO couriers (id, is_available, heartbeat_at)
		VALUES ($1, $2, $3)`,
		courierID, available, time.Now().UTC())
	require.NoError(t, err, "failed to insert courier")
}

type RewardsTier struct {
	MinCumulativeSpendCents int64   `json:"min_cumulative_spend_cents"`
	Multiplier              float64 `json:"multiplier"`
}

// CreateRewardsConfig enables rewards for a seller.
func CreateRewardsConfig(t *testing.T, pool *pgxpool.Pool, sellerID uuid.UUID, stage string, pointsPerUnit, minimumPurchaseCents int64, tiers []RewardsTier) {
	t.Helper()

	tiersJSON, err := json.Marshal(tiers)
	require.NoError(t, err, "failed to marshal tiers")

	_, err = pool.Exec(context.Background(), `
		INSERT INTO rewards_configs (seller_id, enabled, accrual_stage, points_per_currency_unit, minimum_purchase_cents, tiers)
		VALUES ($1, TRUE, $2, $3, $4, $5)`,
		sellerID, stage, pointsPerUnit, minimumPurchaseCents, tiersJSON)
	require.NoError(t, err, "failed to insert rewards config")
}

// ProductStock reads the live stock counter.
func ProductStock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int32 {
	t.Helper()

	var stock int32
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM inventory WHERE product_id = $1`, productID).Scan(&stock)
	require.NoError(t, err, "failed to read stock")
	return stock
}
