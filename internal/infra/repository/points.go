package repository

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// PointsRepository writes the append-only loyalty ledger. The running balance
// is always derived by summing entries; nothing is ever updated in place.
type PointsRepository struct {
	db db.DBTX
}

func NewPointsRepository(db db.DBTX) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) Insert(ctx context.Context, entry shared.PointsEntry) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO points_ledger (buyer_id, seller_id, order_id, points_delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id, reason) DO NOTHING`,
		entry.BuyerID, entry.SellerID, entry.OrderID, entry.PointsDelta, entry.Reason, entry.CreatedAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert points ledger entry", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PointsRepository) FindByOrderAndReason(ctx context.Context, orderID uuid.UUID, reason string) (*shared.PointsEntry, error) {
	var e shared.PointsEntry
	err := r.db.QueryRow(ctx, `
		SELECT buyer_id, seller_id, order_id, points_delta, reason, created_at
		FROM points_ledger
		WHERE order_id = $1 AND reason = $2`,
		orderID, reason).Scan(&e.BuyerID, &e.SellerID, &e.OrderID, &e.PointsDelta, &e.Reason, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("points entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find points entry", err)
	}
	return &e, nil
}

func (r *PointsRepository) Balance(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error) {
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
