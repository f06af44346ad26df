package commands

import (
	"context"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/events"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// pendingEvent defers publication until after the owning transaction commits.
// Nothing leaves the process for work that might still roll back.
type pendingEvent struct {
	topic         string
	eventType     string
	correlationID uuid.UUID
	payload       any
}

func (e pendingEvent) emit(ctx context.Context, em events.Emitter) {
	em.Emit(ctx, e.topic, e.eventType, e.correlationID, e.payload)
}

func statusChangedEvent(o *order.Order, from, to order.Status, by actor.Role) pendingEvent {
	return pendingEvent{
		topic:         events.TopicOrderStatusChanged,
		eventType:     events.EventOrderStatusChanged,
		correlationID: o.ID(),
		payload: events.OrderStatusChangedPayload{
			OrderID: o.ID().String(),
			From:    from.String(),
			To:      to.String(),
			Actor:   by.String(),
		},
	}
}

func offerCreatedEvent(offer *dispatch.Offer) pendingEvent {
	return pendingEvent{
		topic:         events.TopicOfferCreated,
		eventType:     events.EventOfferCreated,
		correlationID: offer.OrderID(),
		payload: events.OfferCreatedPayload{
			OfferID:   offer.ID().String(),
			OrderID:   offer.OrderID().String(),
			CourierID: offer.CourierID().String(),
			ExpiresAt: offer.ExpiresAt(),
		},
	}
}

func offerResolvedEvent(offer *dispatch.Offer, outcome string) pendingEvent {
	return pendingEvent{
		topic:         events.TopicOfferResolved,
		eventType:     events.EventOfferResolved,
		correlationID: offer.OrderID(),
		payload: events.OfferResolvedPayload{
			OfferID:   offer.ID().String(),
			OrderID:   offer.OrderID().String(),
			CourierID: offer.CourierID().String(),
			Outcome:   outcome,
		},
	}
}

func offerExpiredEvent(offer *dispatch.Offer, reissued bool) pendingEvent {
	return pendingEvent{
		topic:         events.TopicOfferExpired,
		eventType:     events.EventOfferExpired,
		correlationID: offer.OrderID(),
		payload: events.OfferExpiredPayload{
			OfferID:   offer.ID().String(),
			OrderID:   offer.OrderID().String(),
			CourierID: offer.CourierID().String(),
			Reissued:  reissued,
		},
	}
}

func pointsEvent(entry shared.PointsEntry) pendingEvent {
	return pendingEvent{
		topic:         events.TopicPointsAccrued,
		eventType:     events.EventPointsAccrued,
		correlationID: entry.OrderID,
		payload: events.PointsAccruedPayload{
			OrderID:     entry.OrderID.String(),
			BuyerID:     entry.BuyerID.String(),
			SellerID:    entry.SellerID.String(),
			PointsDelta: entry.PointsDelta,
			Reason:      entry.Reason,
		},
	}
}
