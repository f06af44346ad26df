package commands

import (
	"context"

	"pasarlink/internal/domain/cart"
	"pasarlink/internal/infra"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/queries"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidCartLine = errs.New("invalid cart line")

type AddToCartInput struct {
	SellerID  uuid.UUID `json:"seller_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
}

type CartCommands interface {
	// AddToCart merges the product into the buyer's cart with the seller,
	// snapshotting the live title and price.
	AddToCart(ctx context.Context, buyerID uuid.UUID, input AddToCartInput) (*queries.CartView, error)
	ClearCart(ctx context.Context, buyerID, sellerID uuid.UUID) error
}

type cartUseCaseImpl struct {
	uow         shared.UnitOfWork
	cartQueries queries.CartQueries
	clock       clock.Clock
}

func NewCartUseCase(uow shared.UnitOfWork, cartQueries queries.CartQueries, clock clock.Clock) CartCommands {
	return &cartUseCaseImpl{uow: uow, cartQueries: cartQueries, clock: clock}
}

func (c *cartUseCaseImpl) AddToCart(ctx context.Context, buyerID uuid.UUID, input AddToCartInput) (*queries.CartView, error) {
	now := c.clock.Now()

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snapshot, err := tx.Inventory().Snapshot(ctx, input.SellerID, []uuid.UUID{input.ProductID})
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		item, ok := snapshot[input.ProductID]
		if !ok || !item.Active {
			return errs.Wrapf(ErrProductUnavailable, "product %s", input.ProductID)
		}

		crt, err := tx.Carts().FindByBuyerSeller(ctx, buyerID, input.SellerID)
		if err != nil {
			if !infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			crt = cart.NewCart(buyerID, input.SellerID, now)
		}

		if err := crt.AddLine(input.ProductID, item.Title, item.UnitPriceCents, input.Quantity, now); err != nil {
			return errs.Mark(err, ErrInvalidCartLine)
		}

		if err := tx.Carts().Save(ctx, crt); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetByBuyerSeller(ctx, buyerID, input.SellerID)
}

func (c *cartUseCaseImpl) ClearCart(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Carts().Clear(ctx, buyerID, sellerID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
