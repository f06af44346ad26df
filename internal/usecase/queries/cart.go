package queries

import (
	"context"

	"github.com/google/uuid"
)

type CartQueries interface {
	GetByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*CartView, error)
}

type CartViewRepo interface {
	FindByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	repo CartViewRepo
}

func NewCartQueries(repo CartViewRepo) CartQueries {
	return &cartQueriesImpl{repo: repo}
}

func (q *cartQueriesImpl) GetByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*CartView, error) {
	return q.repo.FindByBuyerSeller(ctx, buyerID, sellerID)
}
