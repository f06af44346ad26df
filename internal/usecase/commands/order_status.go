package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/domain/rewards"
	"pasarlink/internal/events"
	"pasarlink/internal/infra"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/config"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errs.New("order not found")
	ErrOrderAccessDenied  = errs.New("actor may not act on this order")
	ErrInvalidTransition  = errs.New("invalid status transition")
	ErrTransitionConflict = errs.New("order status changed concurrently")
)

type AdvanceOrderResult struct {
	From order.Status
	To   order.Status
}

type OrderCommands interface {
	// AdvanceStatus applies one lifecycle transition on behalf of the actor.
	// Side effects ride the same transaction: dispatch on delivery_requested,
	// points accrual at the seller's configured stage, stock restoration and
	// points compensation on cancellation.
	AdvanceStatus(ctx context.Context, actorID uuid.UUID, role actor.Role, orderID uuid.UUID, target order.Status) (*AdvanceOrderResult, error)
}

type orderUseCaseImpl struct {
	uow     shared.UnitOfWork
	cache   shared.OrderStatusCache
	emitter events.Emitter
	clock   clock.Clock
	cfg     config.DispatchConfig
}

func NewOrderUseCase(
	uow shared.UnitOfWork,
	cache shared.OrderStatusCache,
	emitter events.Emitter,
	clock clock.Clock,
	cfg config.DispatchConfig,
) OrderCommands {
	return &orderUseCaseImpl{
		uow:     uow,
		cache:   cache,
		emitter: emitter,
		clock:   clock,
		cfg:     cfg,
	}
}

func (u *orderUseCaseImpl) AdvanceStatus(
	ctx context.Context,
	actorID uuid.UUID,
	role actor.Role,
	orderID uuid.UUID,
	target order.Status,
) (*AdvanceOrderResult, error) {
	now := u.clock.Now()

	var (
		result  *AdvanceOrderResult
		pending []pendingEvent
	)
	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pending = pending[:0]

		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := verifyOwnership(o, actorID, role); err != nil {
			return err
		}

		from := o.Status()
		if err := o.AdvanceTo(target, role, now); err != nil {
			return mapTransitionError(err)
		}
		if err := tx.Orders().UpdateStatus(ctx, o, from); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrTransitionConflict
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		pending = append(pending, statusChangedEvent(o, from, target, role))

		extra, err := u.applySideEffects(ctx, tx, o, from, target, now)
		if err != nil {
			return err
		}
		pending = append(pending, extra...)

		result = &AdvanceOrderResult{From: from, To: target}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.refreshCache(ctx, orderID, target)
	for _, ev := range pending {
		ev.emit(ctx, u.emitter)
	}
	return result, nil
}

func (u *orderUseCaseImpl) applySideEffects(
	ctx context.Context,
	tx shared.Tx,
	o *order.Order,
	from, target order.Status,
	now time.Time,
) ([]pendingEvent, error) {
	var pending []pendingEvent

	switch target {
	case order.StatusDeliveryRequested:
		offer, err := issueOffer(ctx, tx, o.ID(), nil, now, u.cfg.OfferTTL)
		if err != nil {
			return nil, err
		}
		if offer != nil {
			pending = append(pending, offerCreatedEvent(offer))
		}

	case order.StatusConfirmed:
		ev, err := accruePoints(ctx, tx, o, rewards.StageConfirmed, now)
		if err != nil {
			return nil, err
		}
		pending = append(pending, ev...)

	case order.StatusCompleted:
		ev, err := accruePoints(ctx, tx, o, rewards.StageCompleted, now)
		if err != nil {
			return nil, err
		}
		pending = append(pending, ev...)

	case order.StatusCancelled:
		ev, err := compensateCancellation(ctx, tx, o, now)
		if err != nil {
			return nil, err
		}
		pending = append(pending, ev...)
	}
	return pending, nil
}

// compensateCancellation puts reserved stock back and reverses any points the
// order already earned. Both are idempotent so a retried transaction is safe.
func compensateCancellation(ctx context.Context, tx shared.Tx, o *order.Order, now time.Time) ([]pendingEvent, error) {
	for _, l := range o.Lines() {
		if err := tx.Inventory().Restore(ctx, o.SellerID(), l.ProductID, l.Quantity); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("inventory row gone during cancellation restore",
					"order_id", o.ID(), "product_id", l.ProductID)
				continue
			}
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}

	// A pending offer for a cancelled order must not reach a courier.
	if pendingOffer, err := tx.Offers().FindPendingByOrder(ctx, o.ID()); err == nil {
		if _, err := tx.Offers().Resolve(ctx, pendingOffer.ID(), nil, dispatch.OfferCancelled); err != nil &&
			!infra.IsKind(err, infra.KindConflict) {
			return nil, errs.Mark(err, ErrDatabaseOperationFailed)
		}
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	earned, err := tx.Points().FindByOrderAndReason(ctx, o.ID(), rewards.ReasonEarn)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entry := shared.PointsEntry{
		BuyerID:     o.BuyerID(),
		SellerID:    o.SellerID(),
		OrderID:     o.ID(),
		PointsDelta: -earned.PointsDelta,
		Reason:      rewards.ReasonCompensate,
		CreatedAt:   now,
	}
	inserted, err := tx.Points().Insert(ctx, entry)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !inserted {
		return nil, nil
	}
	return []pendingEvent{pointsEvent(entry)}, nil
}

// accruePoints writes an earn entry when the seller's policy fires at this
// stage. The (order, reason) unique key makes double accrual impossible.
func accruePoints(ctx context.Context, tx shared.Tx, o *order.Order, stage rewards.Stage, now time.Time) ([]pendingEvent, error) {
	policy, err := tx.RewardsConfigs().FindBySeller(ctx, o.SellerID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !policy.Enabled || policy.Stage != stage {
		return nil, nil
	}

	cumulative, err := tx.Orders().SumCompletedTotals(ctx, o.BuyerID(), o.SellerID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	points := policy.Calculate(o.TotalCents(), cumulative)
	if points <= 0 {
		return nil, nil
	}

	entry := shared.PointsEntry{
		BuyerID:     o.BuyerID(),
		SellerID:    o.SellerID(),
		OrderID:     o.ID(),
		PointsDelta: points,
		Reason:      rewards.ReasonEarn,
		CreatedAt:   now,
	}
	inserted, err := tx.Points().Insert(ctx, entry)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !inserted {
		return nil, nil
	}
	return []pendingEvent{pointsEvent(entry)}, nil
}

func verifyOwnership(o *order.Order, actorID uuid.UUID, role actor.Role) error {
	switch role {
	case actor.RoleBuyer:
		if o.BuyerID() != actorID {
			return ErrOrderAccessDenied
		}
	case actor.RoleSeller:
		if o.SellerID() != actorID {
			return ErrOrderAccessDenied
		}
	case actor.RoleCourier:
		if err := o.VerifyCourier(actorID); err != nil {
			return ErrOrderAccessDenied
		}
	case actor.RoleSystem:
		// internal callers act on any order
	default:
		return ErrOrderAccessDenied
	}
	return nil
}

func mapTransitionError(err error) error {
	switch {
	case errors.Is(err, order.ErrOrderAlreadyClosed),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrActorNotAllowed):
		return errs.Mark(err, ErrInvalidTransition)
	default:
		return errs.Mark(err, ErrDomainValidation)
	}
}

func (u *orderUseCaseImpl) refreshCache(ctx context.Context, orderID uuid.UUID, status order.Status) {
	if err := u.cache.SetStatus(ctx, orderID, status.String()); err != nil {
		slog.Warn("order status cache write failed", "order_id", orderID, "error", err.Error())
	}
}
