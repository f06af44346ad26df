package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOfferCreated       = "OfferCreated"
	EventOfferResolved      = "OfferResolved"
	EventOfferExpired       = "OfferExpired"
	EventPointsAccrued      = "PointsAccrued"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOfferCreated       = "dispatch.offer.created"
	TopicOfferResolved      = "dispatch.offer.resolved"
	TopicOfferExpired       = "dispatch.offer.expired"
	TopicPointsAccrued      = "rewards.points.accrued"
)

// Partition key = order id so every event of one order keeps its ordering.
func PartitionKey(orderID uuid.UUID) []byte { return []byte(orderID.String()) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type LineItem struct {
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int32  `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID    string     `json:"order_id"`
	BuyerID    string     `json:"buyer_id"`
	SellerID   string     `json:"seller_id"`
	Lines      []LineItem `json:"lines"`
	TotalCents int64      `json:"total_cents"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Actor   string `json:"actor"`
}

type OfferCreatedPayload struct {
	OfferID   string    `json:"offer_id"`
	OrderID   string    `json:"order_id"`
	CourierID string    `json:"courier_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OfferResolvedPayload struct {
	OfferID   string `json:"offer_id"`
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
	Outcome   string `json:"outcome"` // accepted | cancelled
}

type OfferExpiredPayload struct {
	OfferID   string `json:"offer_id"`
	OrderID   string `json:"order_id"`
	CourierID string `json:"courier_id"`
	Reissued  bool   `json:"reissued"`
}

type PointsAccruedPayload struct {
	OrderID     string `json:"order_id"`
	BuyerID     string `json:"buyer_id"`
	SellerID    string `json:"seller_id"`
	PointsDelta int64  `json:"points_delta"`
	Reason      string `json:"reason"`
}
