package commands

import (
	"context"
	"log/slog"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/events"
	"pasarlink/internal/infra"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/config"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrOfferNotFound        = errs.New("offer not found")
	ErrOfferAlreadyResolved = errs.New("offer already resolved")
	ErrOfferNotOwned        = errs.New("offer belongs to another courier")
)

// maxDispatchBatch bounds one sweep pass so a backlog cannot hold the
// transaction open indefinitely.
const maxDispatchBatch = 100

type RespondToOfferResult struct {
	Offer    *dispatch.Offer
	Accepted bool
}

type SweepResult struct {
	Expired    int
	Reissued   int
	Dispatched int
}

type DispatchCommands interface {
	// RespondToOffer records a courier's accept or decline. First writer wins:
	// a response racing the expiration sweep resolves exactly one way.
	RespondToOffer(ctx context.Context, courierID, offerID uuid.UUID, accept bool) (*RespondToOfferResult, error)
	// SweepExpiredOffers expires every overdue offer, reissues each affected
	// order to the next courier, and dispatches orders still waiting for one.
	SweepExpiredOffers(ctx context.Context) (*SweepResult, error)
}

type dispatchUseCaseImpl struct {
	uow     shared.UnitOfWork
	cache   shared.OrderStatusCache
	emitter events.Emitter
	clock   clock.Clock
	cfg     config.DispatchConfig
}

func NewDispatchUseCase(
	uow shared.UnitOfWork,
	cache shared.OrderStatusCache,
	emitter events.Emitter,
	clock clock.Clock,
	cfg config.DispatchConfig,
) DispatchCommands {
	return &dispatchUseCaseImpl{
		uow:     uow,
		cache:   cache,
		emitter: emitter,
		clock:   clock,
		cfg:     cfg,
	}
}

func (d *dispatchUseCaseImpl) RespondToOffer(
	ctx context.Context,
	courierID, offerID uuid.UUID,
	accept bool,
) (*RespondToOfferResult, error) {
	now := d.clock.Now()

	var (
		resolved *dispatch.Offer
		pending  []pendingEvent
	)
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pending = pending[:0]

		current, err := tx.Offers().FindByID(ctx, offerID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOfferNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if current.CourierID() != courierID {
			return ErrOfferNotOwned
		}

		target := dispatch.OfferCancelled
		if accept {
			target = dispatch.OfferAccepted
		}
		resolved, err = tx.Offers().Resolve(ctx, offerID, &courierID, target)
		if err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrOfferAlreadyResolved
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if accept {
			ev, err := d.assignOrder(ctx, tx, resolved, now)
			if err != nil {
				return err
			}
			// An assigned courier leaves the pool until their next
			// available heartbeat, so sweeps cannot re-offer to them
			// mid-delivery.
			if err := tx.Couriers().SetAvailability(ctx, courierID, false); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			pending = append(pending, offerResolvedEvent(resolved, "accepted"))
			pending = append(pending, ev...)
			return nil
		}

		pending = append(pending, offerResolvedEvent(resolved, "cancelled"))

		// Declines hand the order to the next courier right away.
		next, err := issueOffer(ctx, tx, resolved.OrderID(), []uuid.UUID{courierID}, now, d.cfg.OfferTTL)
		if err != nil {
			return err
		}
		if next != nil {
			pending = append(pending, offerCreatedEvent(next))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accept {
		d.refreshCache(ctx, resolved.OrderID(), order.StatusAssigned)
	}
	for _, ev := range pending {
		ev.emit(ctx, d.emitter)
	}
	return &RespondToOfferResult{Offer: resolved, Accepted: accept}, nil
}

func (d *dispatchUseCaseImpl) assignOrder(
	ctx context.Context,
	tx shared.Tx,
	offer *dispatch.Offer,
	now time.Time,
) ([]pendingEvent, error) {
	o, err := tx.Orders().FindByIDForUpdate(ctx, offer.OrderID())
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	from := o.Status()
	if err := o.AssignCourier(offer.CourierID(), now); err != nil {
		return nil, mapTransitionError(err)
	}
	if err := tx.Orders().UpdateStatus(ctx, o, from); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrTransitionConflict
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return []pendingEvent{statusChangedEvent(o, from, order.StatusAssigned, actor.RoleSystem)}, nil
}

func (d *dispatchUseCaseImpl) SweepExpiredOffers(ctx context.Context) (*SweepResult, error) {
	now := d.clock.Now()

	var (
		result  SweepResult
		pending []pendingEvent
	)
	err := d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		pending = pending[:0]
		result = SweepResult{}

		expired, err := tx.Offers().ExpireDue(ctx, now)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result.Expired = len(expired)

		for _, old := range expired {
			next, err := issueOffer(ctx, tx, old.OrderID(), []uuid.UUID{old.CourierID()}, now, d.cfg.OfferTTL)
			if err != nil {
				return err
			}
			reissued := next != nil
			if reissued {
				result.Reissued++
				pending = append(pending, offerCreatedEvent(next))
			}
			pending = append(pending, offerExpiredEvent(old, reissued))
		}

		// Orders that never got an offer (no courier was eligible) get another
		// chance on every sweep.
		waiting, err := tx.Orders().FindAwaitingDispatch(ctx, maxDispatchBatch)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		for _, orderID := range waiting {
			next, err := issueOffer(ctx, tx, orderID, nil, now, d.cfg.OfferTTL)
			if err != nil {
				return err
			}
			if next != nil {
				result.Dispatched++
				pending = append(pending, offerCreatedEvent(next))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range pending {
		ev.emit(ctx, d.emitter)
	}
	return &result, nil
}

func (d *dispatchUseCaseImpl) refreshCache(ctx context.Context, orderID uuid.UUID, status order.Status) {
	if err := d.cache.SetStatus(ctx, orderID, status.String()); err != nil {
		slog.Warn("order status cache write failed", "order_id", orderID, "error", err.Error())
	}
}

// issueOffer picks the least recently offered eligible courier and creates a
// pending offer for the order. Returns nil when no courier is eligible or the
// order already has a live offer.
func issueOffer(
	ctx context.Context,
	tx shared.Tx,
	orderID uuid.UUID,
	excluded []uuid.UUID,
	now time.Time,
	ttl time.Duration,
) (*dispatch.Offer, error) {
	courierID, err := tx.Couriers().PickEligible(ctx, excluded)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Info("no eligible courier for order", "order_id", orderID)
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	offer := dispatch.NewOffer(orderID, courierID, now, ttl)
	if err := tx.Offers().CreatePending(ctx, offer); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Couriers().MarkOffered(ctx, courierID, now); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return offer, nil
}
