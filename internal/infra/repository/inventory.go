package repository

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// InventoryRepository is the only code path that mutates stock counters. The
// reserve statement checks and decrements in one UPDATE, so concurrent
// reservations on the same row serialize on the row lock and can never drive
// stock negative.
type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Snapshot(ctx context.Context, sellerID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]shared.InventorySnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, title, unit_price_cents, stock, is_active
		FROM inventory
		WHERE seller_id = $1 AND product_id = ANY($2)`,
		sellerID, productIDs)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to snapshot inventory", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]shared.InventorySnapshot, len(productIDs))
	for rows.Next() {
		var s shared.InventorySnapshot
		if err := rows.Scan(&s.ProductID, &s.Title, &s.UnitPriceCents, &s.Stock, &s.Active); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory row", err)
		}
		out[s.ProductID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read inventory rows", err)
	}
	return out, nil
}

func (r *InventoryRepository) Reserve(ctx context.Context, sellerID, productID uuid.UUID, quantity int32) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory
		SET stock = stock - $3, updated_at = now()
		WHERE seller_id = $1 AND product_id = $2 AND is_active AND stock >= $3`,
		sellerID, productID, quantity)
	if err != nil {
		return false, infra.WrapRepoErr("failed to reserve stock", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *InventoryRepository) Restore(ctx context.Context, sellerID, productID uuid.UUID, quantity int32) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory
		SET stock = stock + $3, updated_at = now()
		WHERE seller_id = $1 AND product_id = $2`,
		sellerID, productID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to restore stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory record not found for restore", nil, infra.KindNotFound)
	}
	return nil
}
