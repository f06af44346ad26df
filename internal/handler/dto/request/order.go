package request

import (
	"github.com/google/uuid"
)

type PlaceOrderRequest struct {
	SellerID        uuid.UUID `json:"seller_id" binding:"required"`
	PaymentMethod   string    `json:"payment_method" binding:"required,oneof=cod bank_transfer ewallet"`
	DeliveryAddress string    `json:"delivery_address" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
