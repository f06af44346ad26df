package response

import (
	"time"

	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type CartResponse struct {
	BuyerID    uuid.UUID          `json:"buyerId"`
	SellerID   uuid.UUID          `json:"sellerId"`
	Lines      []CartLineResponse `json:"lines"`
	TotalCents int64              `json:"totalCents"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type CartLineResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Title          string    `json:"title"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int32     `json:"quantity"`
}

func FromCartView(rm *queries.CartView) *CartResponse {
	var resp CartResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}
