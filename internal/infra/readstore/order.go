package readstore

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var v queries.OrderView
	err := r.db.QueryRow(ctx, `
		SELECT id, buyer_id, seller_id, status, payment_method, delivery_address,
		       total_cents, courier_id, confirmed_at, delivered_at, completed_at, created_at, updated_at
		FROM orders
		WHERE id = $1`,
		id).Scan(
		&v.ID, &v.BuyerID, &v.SellerID, &v.Status, &v.PaymentMethod, &v.DeliveryAddress,
		&v.TotalCents, &v.CourierID, &v.ConfirmedAt, &v.DeliveredAt, &v.CompletedAt, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order view", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, title, unit_price_cents, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position`,
		id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order line views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l queries.OrderLineView
		if err := rows.Scan(&l.ProductID, &l.Title, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line view", err)
		}
		v.Lines = append(v.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order line views", err)
	}
	return &v, nil
}

func (r *OrderReadStore) FindAccessIDs(ctx context.Context, id uuid.UUID) (*queries.OrderAccess, error) {
	var a queries.OrderAccess
	err := r.db.QueryRow(ctx, `
		SELECT buyer_id, seller_id, courier_id
		FROM orders
		WHERE id = $1`,
		id).Scan(&a.BuyerID, &a.SellerID, &a.CourierID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order parties", err)
	}
	return &a, nil
}

func (r *OrderReadStore) FindByBuyerFirstPage(ctx context.Context, buyerID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	return r.listPage(ctx, `
		SELECT o.id, o.seller_id, o.status, o.total_cents,
		       (SELECT COUNT(*) FROM order_lines l WHERE l.order_id = o.id) AS line_count,
		       o.created_at
		FROM orders o
		WHERE o.buyer_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2`,
		buyerID, limit)
}

func (r *OrderReadStore) FindByBuyerKeyset(ctx context.Context, buyerID uuid.UUID, after *queries.Cursor, limit int32) ([]*queries.OrderListItem, error) {
	lastCreatedAt, lastID, err := queries.DecodeAfterCursor(after.After)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid pagination cursor", err, infra.KindNotFound)
	}
	return r.listPage(ctx, `
		SELECT o.id, o.seller_id, o.status, o.total_cents,
		       (SELECT COUNT(*) FROM order_lines l WHERE l.order_id = o.id) AS line_count,
		       o.created_at
		FROM orders o
		WHERE o.buyer_id = $1 AND (o.created_at, o.id) < ($2, $3)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`,
		buyerID, lastCreatedAt, lastID, limit)
}

func (r *OrderReadStore) FindBySellerFirstPage(ctx context.Context, sellerID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	return r.listPage(ctx, `
		SELECT o.id, o.seller_id, o.status, o.total_cents,
		       (SELECT COUNT(*) FROM order_lines l WHERE l.order_id = o.id) AS line_count,
		       o.created_at
		FROM orders o
		WHERE o.seller_id = $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2`,
		sellerID, limit)
}

func (r *OrderReadStore) FindBySellerKeyset(ctx context.Context, sellerID uuid.UUID, after *queries.Cursor, limit int32) ([]*queries.OrderListItem, error) {
	lastCreatedAt, lastID, err := queries.DecodeAfterCursor(after.After)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid pagination cursor", err, infra.KindNotFound)
	}
	return r.listPage(ctx, `
		SELECT o.id, o.seller_id, o.status, o.total_cents,
		       (SELECT COUNT(*) FROM order_lines l WHERE l.order_id = o.id) AS line_count,
		       o.created_at
		FROM orders o
		WHERE o.seller_id = $1 AND (o.created_at, o.id) < ($2, $3)
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $4`,
		sellerID, lastCreatedAt, lastID, limit)
}

func (r *OrderReadStore) listPage(ctx context.Context, query string, args ...any) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var result []*queries.OrderListItem
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.ID, &item.SellerID, &item.Status, &item.TotalCents, &item.LineCount, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order list", err)
	}
	return result, nil
}
