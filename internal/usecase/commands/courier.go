package commands

import (
	"context"

	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

type HeartbeatInput struct {
	Available bool               `json:"available"`
	Location  *dispatch.Location `json:"location,omitempty"`
}

type CourierCommands interface {
	// Heartbeat registers the courier as alive and updates availability and
	// last known location. First heartbeat creates the courier row.
	Heartbeat(ctx context.Context, courierID uuid.UUID, input HeartbeatInput) error
}

type courierUseCaseImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCourierUseCase(uow shared.UnitOfWork, clock clock.Clock) CourierCommands {
	return &courierUseCaseImpl{uow: uow, clock: clock}
}

func (c *courierUseCaseImpl) Heartbeat(ctx context.Context, courierID uuid.UUID, input HeartbeatInput) error {
	now := c.clock.Now()
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Couriers().UpsertHeartbeat(ctx, courierID, input.Available, input.Location, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}
