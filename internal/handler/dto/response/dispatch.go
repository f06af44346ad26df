package response

import (
	"time"

	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type OfferResponse struct {
	ID              uuid.UUID `json:"id"`
	OrderID         uuid.UUID `json:"orderId"`
	CourierID       uuid.UUID `json:"courierId"`
	Status          string    `json:"status"`
	DeliveryAddress string    `json:"deliveryAddress,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type SweepResponse struct {
	Expired    int `json:"expired"`
	Reissued   int `json:"reissued"`
	Dispatched int `json:"dispatched"`
}

func FromOfferView(rm *queries.OfferView) *OfferResponse {
	var resp OfferResponse
	_ = copier.Copy(&resp, rm)
	return &resp
}

func FromOfferEntity(o *dispatch.Offer) *OfferResponse {
	return &OfferResponse{
		ID:        o.ID(),
		OrderID:   o.OrderID(),
		CourierID: o.CourierID(),
		Status:    o.Status().String(),
		CreatedAt: o.CreatedAt(),
		ExpiresAt: o.ExpiresAt(),
	}
}

func FromSweepResult(r *commands.SweepResult) *SweepResponse {
	return &SweepResponse{
		Expired:    r.Expired,
		Reissued:   r.Reissued,
		Dispatched: r.Dispatched,
	}
}
