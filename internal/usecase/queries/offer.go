package queries

import (
	"context"

	"github.com/google/uuid"
)

type OfferQueries interface {
	// CurrentForCourier returns the courier's live pending offer, KindNotFound
	// when there is none.
	CurrentForCourier(ctx context.Context, courierID uuid.UUID) (*OfferView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OfferView, error)
}

type OfferViewRepo interface {
	FindPendingByCourier(ctx context.Context, courierID uuid.UUID) (*OfferView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OfferView, error)
}

type offerQueriesImpl struct {
	repo OfferViewRepo
}

func NewOfferQueries(repo OfferViewRepo) OfferQueries {
	return &offerQueriesImpl{repo: repo}
}

func (q *offerQueriesImpl) CurrentForCourier(ctx context.Context, courierID uuid.UUID) (*OfferView, error) {
	return q.repo.FindPendingByCourier(ctx, courierID)
}

func (q *offerQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OfferView, error) {
	return q.repo.FindByID(ctx, id)
}
