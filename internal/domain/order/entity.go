package order

import (
	"errors"
	"time"

	"pasarlink/internal/domain/actor"

	"github.com/google/uuid"
)

var (
	ErrNoLines            = errors.New("order must contain at least one line")
	ErrInvalidQuantity    = errors.New("line quantity must be positive")
	ErrNegativePrice      = errors.New("line price cannot be negative")
	ErrEmptyAddress       = errors.New("delivery address is required")
	ErrInvalidPayment     = errors.New("unknown payment method")
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrActorNotAllowed    = errors.New("actor not allowed for this transition")
	ErrOrderAlreadyClosed = errors.New("order is in a terminal state")
	ErrNoCourierAssigned  = errors.New("order has no assigned courier")
	ErrCourierMismatch    = errors.New("courier is not assigned to this order")
)

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentEWallet      PaymentMethod = "ewallet"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentEWallet:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Line is an immutable snapshot of a purchased item. Title and unit price are
// copied from inventory at placement time so later catalog edits do not rewrite
// order history.
type Line struct {
	ProductID      uuid.UUID
	Title          string
	UnitPriceCents int64
	Quantity       int32
}

func (l Line) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

type Order struct {
	id              uuid.UUID
	buyerID         uuid.UUID
	sellerID        uuid.UUID
	status          Status
	paymentMethod   PaymentMethod
	deliveryAddress string
	totalCents      int64
	lines           []Line
	courierID       *uuid.UUID
	createdAt       time.Time
	confirmedAt     *time.Time
	deliveredAt     *time.Time
	completedAt     *time.Time
	updatedAt       time.Time
}

// NewOrder builds a pending order from snapshotted lines. The total is always
// recomputed here; caller-supplied totals are never trusted.
func NewOrder(
	buyerID, sellerID uuid.UUID,
	payment PaymentMethod,
	deliveryAddress string,
	lines []Line,
	now time.Time,
) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	if !payment.IsValid() {
		return nil, ErrInvalidPayment
	}
	if deliveryAddress == "" {
		return nil, ErrEmptyAddress
	}

	var total int64
	copied := make([]Line, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.UnitPriceCents < 0 {
			return nil, ErrNegativePrice
		}
		copied[i] = l
		total += l.SubtotalCents()
	}

	return &Order{
		id:              uuid.New(),
		buyerID:         buyerID,
		sellerID:        sellerID,
		status:          StatusPending,
		paymentMethod:   payment,
		deliveryAddress: deliveryAddress,
		totalCents:      total,
		lines:           copied,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func Reconstruct(
	id, buyerID, sellerID uuid.UUID,
	status Status,
	payment PaymentMethod,
	deliveryAddress string,
	totalCents int64,
	lines []Line,
	courierID *uuid.UUID,
	createdAt time.Time,
	confirmedAt, deliveredAt, completedAt *time.Time,
	updatedAt time.Time,
) *Order {
	return &Order{
		id:              id,
		buyerID:         buyerID,
		sellerID:        sellerID,
		status:          status,
		paymentMethod:   payment,
		deliveryAddress: deliveryAddress,
		totalCents:      totalCents,
		lines:           lines,
		courierID:       courierID,
		createdAt:       createdAt,
		confirmedAt:     confirmedAt,
		deliveredAt:     deliveredAt,
		completedAt:     completedAt,
		updatedAt:       updatedAt,
	}
}

// AdvanceTo applies a single transition from the lifecycle graph, gated by the
// acting role. Timestamps are recorded for the states buyers and sellers track.
func (o *Order) AdvanceTo(target Status, by actor.Role, now time.Time) error {
	if o.status.IsTerminal() {
		return ErrOrderAlreadyClosed
	}
	if !CanTransition(o.status, target) {
		return ErrInvalidTransition
	}
	if !actorAllowed(o.status, target, by) {
		return ErrActorNotAllowed
	}

	o.status = target
	o.updatedAt = now
	switch target {
	case StatusConfirmed:
		t := now
		o.confirmedAt = &t
	case StatusDelivered:
		t := now
		o.deliveredAt = &t
	case StatusCompleted:
		t := now
		o.completedAt = &t
	}
	return nil
}

// AssignCourier moves the order to assigned and pins the courier who accepted
// the delivery offer. Only that courier may drive the delivery leg afterwards.
func (o *Order) AssignCourier(courierID uuid.UUID, now time.Time) error {
	if err := o.AdvanceTo(StatusAssigned, actor.RoleSystem, now); err != nil {
		return err
	}
	o.courierID = &courierID
	return nil
}

// VerifyCourier checks that the acting courier is the one pinned at assignment.
func (o *Order) VerifyCourier(courierID uuid.UUID) error {
	if o.courierID == nil {
		return ErrNoCourierAssigned
	}
	if *o.courierID != courierID {
		return ErrCourierMismatch
	}
	return nil
}

func (o *Order) ID() uuid.UUID { return o.id }
func (o *Order) BuyerID() uuid.UUID { return o.buyerID }
func (o *Order) SellerID() uuid.UUID { return o.sellerID }
func (o *Order) Status() Status { return o.status }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) DeliveryAddress() string { return o.deliveryAddress }
func (o *Order) TotalCents() int64 { return o.totalCents }
func (o *Order) CourierID() *uuid.UUID { return o.courierID }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) ConfirmedAt() *time.Time { return o.confirmedAt }
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }
func (o *Order) CompletedAt() *time.Time { return o.completedAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// Lines returns a defensive copy; order lines never change after creation.
func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}
