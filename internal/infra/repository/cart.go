package repository

import (
	"context"
	"time"

	"pasarlink/internal/domain/cart"
	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(db db.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*cart.Cart, error) {
	var createdAt, updatedAt time.Time
	err := r.db.QueryRow(ctx, `
		SELECT created_at, updated_at
		FROM carts
		WHERE buyer_id = $1 AND seller_id = $2`,
		buyerID, sellerID).Scan(&createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, title, unit_price_cents, quantity
		FROM cart_lines
		WHERE buyer_id = $1 AND seller_id = $2
		ORDER BY position`,
		buyerID, sellerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart lines", err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}

	return cart.Reconstruct(buyerID, sellerID, lines, createdAt, updatedAt), nil
}

// Save replaces the persisted cart with the entity's current state. Lines are
// rewritten wholesale; position preserves insertion order.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (buyer_id, seller_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (buyer_id, seller_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		c.BuyerID(), c.SellerID(), c.CreatedAt(), c.UpdatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart", err)
	}

	if _, err := r.db.Exec(ctx, `
		DELETE FROM cart_lines WHERE buyer_id = $1 AND seller_id = $2`,
		c.BuyerID(), c.SellerID()); err != nil {
		return infra.WrapRepoErr("failed to clear old cart lines", err)
	}

	for i, l := range c.Lines() {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO cart_lines (buyer_id, seller_id, position, product_id, title, unit_price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.BuyerID(), c.SellerID(), i, l.ProductID, l.Title, l.UnitPriceCents, l.Quantity); err != nil {
			return infra.WrapRepoErr("failed to insert cart line", err)
		}
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM cart_lines WHERE buyer_id = $1 AND seller_id = $2`,
		buyerID, sellerID); err != nil {
		return infra.WrapRepoErr("failed to delete cart lines", err)
	}
	if _, err := r.db.Exec(ctx, `
		DELETE FROM carts WHERE buyer_id = $1 AND seller_id = $2`,
		buyerID, sellerID); err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}
