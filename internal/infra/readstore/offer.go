package readstore

import (
	"context"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OfferReadStore struct {
	db db.DBTX
}

func NewOfferReadStore(db db.DBTX) *OfferReadStore {
	return &OfferReadStore{db: db}
}

// Views join the order so couriers see the drop-off address with the offer.
func (r *OfferReadStore) FindPendingByCourier(ctx context.Context, courierID uuid.UUID) (*queries.OfferView, error) {
	return r.findOne(ctx, `
		SELECT f.id, f.order_id, f.courier_id, f.status, o.delivery_address, f.created_at, f.expires_at
		FROM delivery_offers f
		JOIN orders o ON o.id = f.order_id
		WHERE f.courier_id = $1 AND f.status = 'pending'`,
		courierID)
}

func (r *OfferReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OfferView, error) {
	return r.findOne(ctx, `
		SELECT f.id, f.order_id, f.courier_id, f.status, o.delivery_address, f.created_at, f.expires_at
		FROM delivery_offers f
		JOIN orders o ON o.id = f.order_id
		WHERE f.id = $1`,
		id)
}

func (r *OfferReadStore) findOne(ctx context.Context, query string, args ...any) (*queries.OfferView, error) {
	var v queries.OfferView
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&v.ID, &v.OrderID, &v.CourierID, &v.Status, &v.DeliveryAddress, &v.CreatedAt, &v.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("offer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find offer view", err)
	}
	return &v, nil
}
