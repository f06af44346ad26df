package queries

import (
	"context"

	"github.com/google/uuid"
)

type PointsQueries interface {
	Balance(ctx context.Context, buyerID, sellerID uuid.UUID) (*PointsBalanceView, error)
}

type PointsViewRepo interface {
	SumBalance(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error)
}

type pointsQueriesImpl struct {
	repo PointsViewRepo
}

func NewPointsQueries(repo PointsViewRepo) PointsQueries {
	return &pointsQueriesImpl{repo: repo}
}

func (q *pointsQueriesImpl) Balance(ctx context.Context, buyerID, sellerID uuid.UUID) (*PointsBalanceView, error) {
	balance, err := q.repo.SumBalance(ctx, buyerID, sellerID)
	if err != nil {
		return nil, err
	}
	return &PointsBalanceView{BuyerID: buyerID, SellerID: sellerID, Balance: balance}, nil
}
