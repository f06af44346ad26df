package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyOrderStatus = "order_status:%s"

var ttlStatusCache = 5 * time.Minute

// OrderStatusCache keeps the hottest order read off the database. Writers call
// SetStatus after commit, so stale entries live at most one TTL.
type OrderStatusCache struct {
	rdb *redis.Client
}

func NewOrderStatusCache(rdb *redis.Client) shared.OrderStatusCache {
	return &OrderStatusCache{rdb: rdb}
}

func (c *OrderStatusCache) GetStatus(ctx context.Context, orderID uuid.UUID) (string, bool, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (c *OrderStatusCache) SetStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	return c.rdb.Set(ctx, fmt.Sprintf(keyOrderStatus, orderID), status, ttlStatusCache).Err()
}
