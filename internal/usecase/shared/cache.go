package shared

import (
	"context"

	"github.com/google/uuid"
)

// OrderStatusCache is a best-effort status lookaside. Misses and errors fall
// back to the database; writers update it after commit.
type OrderStatusCache interface {
	GetStatus(ctx context.Context, orderID uuid.UUID) (status string, ok bool, err error)
	SetStatus(ctx context.Context, orderID uuid.UUID, status string) error
}
