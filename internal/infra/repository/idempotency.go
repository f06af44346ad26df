package repository

import (
	"context"
	"time"

	"pasarlink/internal/infra"
	"pasarlink/internal/infra/db"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(db db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, buyerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO idempotency_keys (key, buyer_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, 'processing', $5)
		ON CONFLICT (key, buyer_id) DO NOTHING`,
		key, buyerID, endpoint, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim idempotency key", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var rec shared.IdempotencyRecord
	err := r.db.QueryRow(ctx, `
		SELECT key, buyer_id, endpoint, request_hash, status, result_order_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND buyer_id = $2`,
		key, buyerID).Scan(
		&rec.Key, &rec.BuyerID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &rec.ResultOrderID, &rec.ExpiresAt)
	if err != nil {
		if isNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key, buyerID uuid.UUID, resultOrderID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE idempotency_keys
		SET status = 'completed', result_order_id = $3
		WHERE key = $1 AND buyer_id = $2 AND status = 'processing'`,
		key, buyerID, resultOrderID)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("idempotency key not in processing state", nil, infra.KindConflict)
	}
	return nil
}
