package repository

import (
	"context"
	"time"

	"pasarlink/internal/domain/order"
	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (
			id, buyer_id, seller_id, status, payment_method, delivery_address,
			total_cents, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID(), o.BuyerID(), o.SellerID(), o.Status().String(), o.PaymentMethod().String(),
		o.DeliveryAddress(), o.TotalCents(), o.CreatedAt(), o.UpdatedAt())
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("order already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert order", err)
	}

	for i, l := range o.Lines() {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO order_lines (order_id, position, product_id, title, unit_price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID(), i, l.ProductID, l.Title, l.UnitPriceCents, l.Quantity); err != nil {
			return infra.WrapRepoErr("failed to insert order line", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findByID(ctx, id, false)
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findByID(ctx, id, true)
}

func (r *OrderRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*order.Order, error) {
	query := `
		SELECT id, buyer_id, seller_id, status, payment_method, delivery_address,
		       total_cents, courier_id, created_at, confirmed_at, delivered_at, completed_at, updated_at
		FROM orders
		WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var (
		row       orderRow
		statusRaw string
		payRaw    string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&row.id, &row.buyerID, &row.sellerID, &statusRaw, &payRaw, &row.deliveryAddress,
		&row.totalCents, &row.courierID, &row.createdAt, &row.confirmedAt, &row.deliveredAt, &row.completedAt, &row.updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	status, err := order.ParseStatus(statusRaw)
	if err != nil {
		return nil, infra.WrapRepoErr("stored order has unknown status", err)
	}

	lines, err := r.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}

	return order.Reconstruct(
		row.id, row.buyerID, row.sellerID, status, order.PaymentMethod(payRaw),
		row.deliveryAddress, row.totalCents, lines, row.courierID,
		row.createdAt, row.confirmedAt, row.deliveredAt, row.completedAt, row.updatedAt,
	), nil
}

func (r *OrderRepository) loadLines(ctx context.Context, orderID uuid.UUID) ([]order.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT product_id, title, unit_price_cents, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position`,
		orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order lines", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ProductID, &l.Title, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order lines", err)
	}
	return lines, nil
}

// UpdateStatus is guarded on the previous status so two racing transitions
// cannot both win; the loser sees KindConflict.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order, expectedFrom order.Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, courier_id = $3, confirmed_at = $4, delivered_at = $5, completed_at = $6, updated_at = $7
		WHERE id = $1 AND status = $8`,
		o.ID(), o.Status().String(), o.CourierID(), o.ConfirmedAt(), o.DeliveredAt(), o.CompletedAt(),
		o.UpdatedAt(), expectedFrom.String())
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order status changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

func (r *OrderRepository) SumCompletedTotals(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0)
		FROM orders
		WHERE buyer_id = $1 AND seller_id = $2 AND status = 'completed'`,
		buyerID, sellerID).Scan(&total)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to sum completed totals", err)
	}
	return total, nil
}

func (r *OrderRepository) FindAwaitingDispatch(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id
		FROM orders o
		WHERE o.status = 'delivery_requested'
		  AND NOT EXISTS (
			SELECT 1 FROM delivery_offers f
			WHERE f.order_id = o.id AND f.status = 'pending'
		  )
		ORDER BY o.updated_at ASC
		LIMIT $1
		FOR UPDATE OF o SKIP LOCKED`,
		limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders awaiting dispatch", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read awaiting dispatch list", err)
	}
	return ids, nil
}

type orderRow struct {
	id              uuid.UUID
	buyerID         uuid.UUID
	sellerID        uuid.UUID
	deliveryAddress string
	totalCents      int64
	courierID       *uuid.UUID
	createdAt       time.Time
	confirmedAt     *time.Time
	deliveredAt     *time.Time
	completedAt     *time.Time
	updatedAt       time.Time
}
