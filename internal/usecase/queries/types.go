package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryAddress string          `json:"delivery_address"`
	TotalCents      int64           `json:"total_cents"`
	CourierID       *uuid.UUID      `json:"courier_id,omitempty"`
	Lines           []OrderLineView `json:"lines"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderAccess carries just the party ids of an order, enough to authorize a
// read without loading the full view.
type OrderAccess struct {
	BuyerID   uuid.UUID
	SellerID  uuid.UUID
	CourierID *uuid.UUID
}

type OrderLineView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int32     `json:"quantity"`
}

type OrderListItem struct {
	ID         uuid.UUID `json:"id"`
	SellerID   uuid.UUID `json:"seller_id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	LineCount  int32     `json:"line_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type OfferView struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"order_id"`
	CourierID       uuid.UUID `json:"courier_id"`
	Status          string    `json:"status"`
	DeliveryAddress string    `json:"delivery_address"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type CartView struct {
	BuyerID    uuid.UUID      `json:"buyer_id"`
	SellerID   uuid.UUID      `json:"seller_id"`
	Lines      []CartLineView `json:"lines"`
	TotalCents int64          `json:"total_cents"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type CartLineView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int32     `json:"quantity"`
}

type PointsBalanceView struct {
	BuyerID  uuid.UUID `json:"buyer_id"`
	SellerID uuid.UUID `json:"seller_id"`
	Balance  int64     `json:"balance"`
}
