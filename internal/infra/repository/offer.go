package repository

import (
	"context"
	"time"

	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

// OfferRepository owns delivery_offers. Offers are append-only apart from the
// guarded status flips below; resolved rows stay behind as the audit trail.
type OfferRepository struct {
	db db.DBTX
}

func NewOfferRepository(db db.DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

// CreatePending inserts an offer. The partial unique index on
// (order_id) WHERE status='pending' turns a dispatch race into KindConflict
// instead of a second live offer.
func (r *OfferRepository) CreatePending(ctx context.Context, o *dispatch.Offer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO delivery_offers (id, order_id, courier_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID(), o.OrderID(), o.CourierID(), o.Status().String(), o.CreatedAt(), o.ExpiresAt())
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("order already has a pending offer", err, infra.KindConflict)
		}
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("offer references missing order or courier", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to insert offer", err)
	}
	return nil
}

// Resolve flips a pending offer to the target status. The WHERE status='pending'
// guard makes this first-writer-wins: once the sweep expires an offer a late
// accept loses, and vice versa.
func (r *OfferRepository) Resolve(ctx context.Context, offerID uuid.UUID, courierID *uuid.UUID, to dispatch.OfferStatus) (*dispatch.Offer, error) {
	query := `
		UPDATE delivery_offers
		SET status = $2
		WHERE id = $1 AND status = 'pending'`
	args := []any{offerID, to.String()}
	if courierID != nil {
		query += ` AND courier_id = $3`
		args = append(args, *courierID)
	}
	query += ` RETURNING id, order_id, courier_id, status, created_at, expires_at`

	o, err := scanOffer(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("offer already resolved or not owned by courier", err, infra.KindConflict)
		}
		return nil, infra.WrapRepoErr("failed to resolve offer", err)
	}
	return o, nil
}

// ExpireDue CAS-expires every pending offer past its deadline. Overlapping
// sweeps are safe: each row flips exactly once.
func (r *OfferRepository) ExpireDue(ctx context.Context, now time.Time) ([]*dispatch.Offer, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE delivery_offers
		SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= $1
		RETURNING id, order_id, courier_id, status, created_at, expires_at`,
		now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to expire due offers", err)
	}
	defer rows.Close()

	var out []*dispatch.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired offer", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired offers", err)
	}
	return out, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Offer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, `
		SELECT id, order_id, courier_id, status, created_at, expires_at
		FROM delivery_offers
		WHERE id = $1`,
		id))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("offer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find offer", err)
	}
	return o, nil
}

func (r *OfferRepository) FindPendingByOrder(ctx context.Context, orderID uuid.UUID) (*dispatch.Offer, error) {
	o, err := scanOffer(r.db.QueryRow(ctx, `
		SELECT id, order_id, courier_id, status, created_at, expires_at
		FROM delivery_offers
		WHERE order_id = $1 AND status = 'pending'`,
		orderID))
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("no pending offer for order", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find pending offer", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOffer(row rowScanner) (*dispatch.Offer, error) {
	var (
		id, orderID, courierID uuid.UUID
		statusRaw              string
		createdAt, expiresAt   time.Time
	)
	if err := row.Scan(&id, &orderID, &courierID, &statusRaw, &createdAt, &expiresAt); err != nil {
		return nil, err
	}
	status, err := dispatch.ParseOfferStatus(statusRaw)
	if err != nil {
		return nil, err
	}
	return dispatch.ReconstructOffer(id, orderID, courierID, status, createdAt, expiresAt), nil
}
