package response

import (
	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
)

type PointsBalanceResponse struct {
	BuyerID  uuid.UUID `json:"buyerId"`
	SellerID uuid.UUID `json:"sellerId"`
	Balance  int64     `json:"balance"`
}

func FromPointsBalanceView(rm *queries.PointsBalanceView) *PointsBalanceResponse {
	return &PointsBalanceResponse{
		BuyerID:  rm.BuyerID,
		SellerID: rm.SellerID,
		Balance:  rm.Balance,
	}
}
