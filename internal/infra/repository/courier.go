package repository

import (
	"context"
	"time"

	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"

	"github.com/google/uuid"
)

type CourierRepository struct {
	db db.DBTX
}

func NewCourierRepository(db db.DBTX) *CourierRepository {
	return &CourierRepository{db: db}
}

func (r *CourierRepository) UpsertHeartbeat(ctx context.Context, courierID uuid.UUID, available bool, loc *dispatch.Location, at time.Time) error {
	var lat, lng *float64
	if loc != nil {
		lat, lng = &loc.Lat, &loc.Lng
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO couriers (id, is_available, last_lat, last_lng, heartbeat_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			is_available = EXCLUDED.is_available,
			last_lat = COALESCE(EXCLUDED.last_lat, couriers.last_lat),
			last_lng = COALESCE(EXCLUDED.last_lng, couriers.last_lng),
			heartbeat_at = EXCLUDED.heartbeat_at`,
		courierID, available, lat, lng, at)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert courier heartbeat", err)
	}
	return nil
}

func (r *CourierRepository) SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE couriers SET is_available = $2 WHERE id = $1`,
		courierID, available)
	if err != nil {
		return infra.WrapRepoErr("failed to set courier availability", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("courier not found", nil, infra.KindNotFound)
	}
	return nil
}

// PickEligible implements round-robin selection: the available courier that was
// offered work the longest ago goes first. SKIP LOCKED keeps two concurrent
// dispatch attempts from picking the same courier.
func (r *CourierRepository) PickEligible(ctx context.Context, excluded []uuid.UUID) (uuid.UUID, error) {
	if excluded == nil {
		excluded = []uuid.UUID{}
	}
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT c.id
		FROM couriers c
		WHERE c.is_available
		  AND NOT (c.id = ANY($1))
		  AND NOT EXISTS (
			SELECT 1 FROM delivery_offers o
			WHERE o.courier_id = c.id AND o.status = 'pending'
		  )
		ORDER BY c.last_offered_at ASC NULLS FIRST
		LIMIT 1
		FOR UPDATE OF c SKIP LOCKED`,
		excluded).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return uuid.Nil, infra.WrapRepoErr("no eligible courier", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to pick courier", err)
	}
	return id, nil
}

func (r *CourierRepository) MarkOffered(ctx context.Context, courierID uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE couriers SET last_offered_at = $2 WHERE id = $1`,
		courierID, at); err != nil {
		return infra.WrapRepoErr("failed to mark courier offered", err)
	}
	return nil
}
