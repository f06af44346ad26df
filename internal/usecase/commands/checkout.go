package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/events"
	"pasarlink/internal/infra"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/queries"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound            = errs.New("cart not found")
	ErrCartEmpty               = errs.New("cart is empty")
	ErrProductUnavailable      = errs.New("product unavailable")
	ErrInsufficientStock       = errs.New("insufficient stock")
	ErrIdempotencyInProgress   = errs.New("idempotency in progress")
	ErrIdempotencyKeyReused    = errs.New("idempotency key reused with different request")
	ErrDomainValidation        = errs.New("domain validation error")
	ErrIdempotencyCheckFailed  = errs.New("idempotency check failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// StockShortage names the first product that could not be reserved.
type StockShortage struct {
	ProductID uuid.UUID
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

const checkoutEndpoint = "POST /orders"

type PlaceOrderInput struct {
	SellerID        uuid.UUID `json:"seller_id"`
	PaymentMethod   string    `json:"payment_method"`
	DeliveryAddress string    `json:"delivery_address"`
}

type PlaceOrderResult struct {
	Order      *queries.OrderView
	IsReplayed bool
}

type CheckoutCommands interface {
	// PlaceOrder converts the buyer's cart with the seller into a pending order,
	// reserving stock for every line in the same transaction. Replays of the
	// same idempotency key return the original order.
	PlaceOrder(ctx context.Context, buyerID uuid.UUID, idempotencyKey uuid.UUID, input PlaceOrderInput) (*PlaceOrderResult, error)
}

type checkoutUseCaseImpl struct {
	uow          shared.UnitOfWork
	orderQueries queries.OrderQueries
	cache        shared.OrderStatusCache
	emitter      events.Emitter
	clock        clock.Clock
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	orderQueries queries.OrderQueries,
	cache shared.OrderStatusCache,
	emitter events.Emitter,
	clock clock.Clock,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:          uow,
		orderQueries: orderQueries,
		cache:        cache,
		emitter:      emitter,
		clock:        clock,
	}
}

func (c *checkoutUseCaseImpl) PlaceOrder(
	ctx context.Context,
	buyerID uuid.UUID,
	idempotencyKey uuid.UUID,
	input PlaceOrderInput,
) (*PlaceOrderResult, error) {
	requestHash := calculateRequestHash(input)
	now := c.clock.Now()

	var (
		placed   *order.Order
		replayID *uuid.UUID
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		existing, err := c.claimIdempotencyKey(ctx, tx, idempotencyKey, buyerID, requestHash, now)
		if err != nil {
			return err
		}
		if existing != nil {
			replayID = existing
			return nil
		}

		placed, err = c.placeFromCart(ctx, tx, buyerID, input, now)
		if err != nil {
			return err
		}
		return tx.Idempotency().MarkCompleted(ctx, idempotencyKey, buyerID, placed.ID())
	})
	if err != nil {
		return nil, err
	}

	if replayID != nil {
		view, err := c.orderQueries.GetByID(ctx, buyerID, actor.RoleBuyer, *replayID)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return &PlaceOrderResult{Order: view, IsReplayed: true}, nil
	}

	c.afterCommit(ctx, placed)

	view, err := c.orderQueries.GetByID(ctx, buyerID, actor.RoleBuyer, placed.ID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return &PlaceOrderResult{Order: view, IsReplayed: false}, nil
}

// claimIdempotencyKey returns the prior result's order id on replay, nil when
// this request now owns the key.
func (c *checkoutUseCaseImpl) claimIdempotencyKey(
	ctx context.Context,
	tx shared.Tx,
	key, buyerID uuid.UUID,
	requestHash string,
	now time.Time,
) (*uuid.UUID, error) {
	expiresAt := now.Add(24 * time.Hour)
	inserted, err := tx.Idempotency().TryInsert(ctx, key, buyerID, checkoutEndpoint, requestHash, expiresAt)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}
	if inserted {
		return nil, nil
	}

	record, err := tx.Idempotency().Get(ctx, key, buyerID)
	if err != nil {
		return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
	}

	if record.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}

	switch record.Status {
	case "completed":
		if record.ResultOrderID == nil {
			return nil, errs.New("completed request missing result order ID")
		}
		return record.ResultOrderID, nil
	case "processing":
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.New("invalid idempotency key status")
	}
}

func (c *checkoutUseCaseImpl) placeFromCart(
	ctx context.Context,
	tx shared.Tx,
	buyerID uuid.UUID,
	input PlaceOrderInput,
	now time.Time,
) (*order.Order, error) {
	crt, err := tx.Carts().FindByBuyerSeller(ctx, buyerID, input.SellerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if crt.IsEmpty() {
		return nil, ErrCartEmpty
	}

	cartLines := crt.Lines()
	productIDs := make([]uuid.UUID, len(cartLines))
	for i, l := range cartLines {
		productIDs[i] = l.ProductID
	}

	snapshot, err := tx.Inventory().Snapshot(ctx, input.SellerID, productIDs)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	// Reprice from live inventory; the cart's snapshot may be stale.
	lines := make([]order.Line, 0, len(cartLines))
	for _, l := range cartLines {
		item, ok := snapshot[l.ProductID]
		if !ok || !item.Active {
			return nil, errs.Wrapf(ErrProductUnavailable, "product %s", l.ProductID)
		}
		lines = append(lines, order.Line{
			ProductID:      l.ProductID,
			Title:          item.Title,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       l.Quantity,
		})
	}

	o, err := order.NewOrder(buyerID, input.SellerID, order.PaymentMethod(input.PaymentMethod), input.DeliveryAddress, lines, now)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	for _, l := range lines {
		ok, err := tx.Inventory().Reserve(ctx, input.SellerID, l.ProductID, l.Quantity)
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !ok {
			return nil, errs.Mark(&StockShortage{ProductID: l.ProductID}, ErrInsufficientStock)
		}
	}

	if err := tx.Orders().Create(ctx, o); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Carts().Clear(ctx, buyerID, input.SellerID); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return o, nil
}

func (c *checkoutUseCaseImpl) afterCommit(ctx context.Context, o *order.Order) {
	if err := c.cache.SetStatus(ctx, o.ID(), o.Status().String()); err != nil {
		slog.Warn("order status cache write failed", "order_id", o.ID(), "error", err.Error())
	}

	lines := o.Lines()
	items := make([]events.LineItem, len(lines))
	for i, l := range lines {
		items[i] = events.LineItem{
			ProductID:      l.ProductID.String(),
			Title:          l.Title,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		}
	}
	c.emitter.Emit(ctx, events.TopicOrderCreated, events.EventOrderCreated, o.ID(), events.OrderCreatedPayload{
		OrderID:    o.ID().String(),
		BuyerID:    o.BuyerID().String(),
		SellerID:   o.SellerID().String(),
		Lines:      items,
		TotalCents: o.TotalCents(),
	})
}

func calculateRequestHash(input PlaceOrderInput) string {
	data, _ := json.Marshal(input)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
