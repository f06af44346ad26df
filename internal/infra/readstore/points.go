package readstore

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

type PointsReadStore struct {
	db db.DBTX
}

func NewPointsReadStore(db db.DBTX) *PointsReadStore {
	return &PointsReadStore{db: db}
}

func (r *PointsReadStore) SumBalance(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(points_delta), 0)
		FROM points_ledger
		WHERE buyer_id = $1 AND seller_id = $2`,
		buyerID, sellerID).Scan(&balance)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sum points balance", err)
	}
	return balance, nil
}
