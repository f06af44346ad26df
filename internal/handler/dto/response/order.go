package response

import (
	"time"

	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	BuyerID         uuid.UUID           `json:"buyerId"`
	SellerID        uuid.UUID           `json:"sellerId"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"paymentMethod"`
	DeliveryAddress string              `json:"deliveryAddress"`
	TotalCents      int64               `json:"totalCents"`
	CourierID       *uuid.UUID          `json:"courierId,omitempty"`
	Lines           []OrderLineResponse `json:"lines"`
	ConfirmedAt     *time.Time          `json:"confirmedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type OrderLineResponse struct {
	ProductID      uuid.UUID `json:"productId"`
	Title          string    `json:"title"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int32     `json:"quantity"`
}

type OrderListResponse struct {
	ID         uuid.UUID `json:"id"`
	SellerID   uuid.UUID `json:"sellerId"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"totalCents"`
	LineCount  int32     `json:"lineCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderPageResponse struct {
	Orders     []*OrderListResponse `json:"orders"`
	NextCursor *string              `json:"nextCursor,omitempty"`
}

type OrderStatusResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	var resp OrderResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}

func FromOrderListItem(rm *queries.OrderListItem) *OrderListResponse {
	var resp OrderListResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}

func FromOrderPage(items []*queries.OrderListItem, next *queries.Cursor) *OrderPageResponse {
	page := &OrderPageResponse{Orders: make([]*OrderListResponse, len(items))}
	for i, item := range items {
		page.Orders[i] = FromOrderListItem(item)
	}
	if next != nil {
		page.NextCursor = &next.After
	}
	return page
}
