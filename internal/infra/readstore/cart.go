package readstore

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(db db.DBTX) *CartReadStore {
	return &CartReadStore{db: db}
}

func (r *CartReadStore) FindByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*queries.CartView, error) {
	v := queries.CartView{BuyerID: buyerID, SellerID: sellerID}
	err := r.db.QueryRow(ctx, `
		SELECT updated_at FROM carts WHERE buyer_id = $1 AND seller_id = $2`,
		buyerID, sellerID).Scan(&v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart view", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, title, unit_price_cents, quantity
		FROM cart_lines
		WHERE buyer_id = $1 AND seller_id = $2
		ORDER BY position`,
		buyerID, sellerID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart line views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l queries.CartLineView
		if err := rows.Scan(&l.ProductID, &l.Title, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line view", err)
		}
		v.TotalCents += l.UnitPriceCents * int64(l.Quantity)
		v.Lines = append(v.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart line views", err)
	}
	return &v, nil
}
