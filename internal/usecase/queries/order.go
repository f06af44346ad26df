package queries

import (
	"context"
	"log/slog"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/pkg/errs"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrOrderAccessDenied = errs.New("actor may not view this order")

type OrderQueries interface {
	GetByID(ctx context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (*OrderView, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	// GetStatus serves from the lookaside cache when warm. Access is checked
	// against the order parties before any cache read.
	GetStatus(ctx context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (string, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindAccessIDs(ctx context.Context, id uuid.UUID) (*OrderAccess, error)
	FindByBuyerFirstPage(ctx context.Context, buyerID uuid.UUID, limit int32) ([]*OrderListItem, error)
	FindByBuyerKeyset(ctx context.Context, buyerID uuid.UUID, after *Cursor, limit int32) ([]*OrderListItem, error)
	FindBySellerFirstPage(ctx context.Context, sellerID uuid.UUID, limit int32) ([]*OrderListItem, error)
	FindBySellerKeyset(ctx context.Context, sellerID uuid.UUID, after *Cursor, limit int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo  OrderViewRepo
	cache shared.OrderStatusCache
}

func NewOrderQueries(repo OrderViewRepo, cache shared.OrderStatusCache) OrderQueries {
	return &orderQueriesImpl{repo: repo, cache: cache}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewOrder(OrderAccess{BuyerID: view.BuyerID, SellerID: view.SellerID, CourierID: view.CourierID}, actorID, role) {
		return nil, ErrOrderAccessDenied
	}
	return view, nil
}

func (q *orderQueriesImpl) GetStatus(ctx context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (string, error) {
	// The cache holds statuses for every order, so the party check cannot be
	// skipped on a hit.
	access, err := q.repo.FindAccessIDs(ctx, id)
	if err != nil {
		return "", err
	}
	if !canViewOrder(*access, actorID, role) {
		return "", ErrOrderAccessDenied
	}

	if status, ok, err := q.cache.GetStatus(ctx, id); err != nil {
		slog.Warn("order status cache read failed", "order_id", id, "error", err.Error())
	} else if ok {
		return status, nil
	}

	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := q.cache.SetStatus(ctx, id, view.Status); err != nil {
		slog.Warn("order status cache write failed", "order_id", id, "error", err.Error())
	}
	return view.Status, nil
}

func (q *orderQueriesImpl) ListByBuyer(ctx context.Context, buyerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	return q.list(ctx, buyerID, after, limit, q.repo.FindByBuyerFirstPage, q.repo.FindByBuyerKeyset)
}

func (q *orderQueriesImpl) ListBySeller(ctx context.Context, sellerID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	return q.list(ctx, sellerID, after, limit, q.repo.FindBySellerFirstPage, q.repo.FindBySellerKeyset)
}

func (q *orderQueriesImpl) list(
	ctx context.Context,
	partyID uuid.UUID,
	after *Cursor,
	limit int,
	firstPage func(context.Context, uuid.UUID, int32) ([]*OrderListItem, error),
	keyset func(context.Context, uuid.UUID, *Cursor, int32) ([]*OrderListItem, error),
) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*OrderListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = firstPage(ctx, partyID, int32(limit))
	} else {
		rows, err = keyset(ctx, partyID, after, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}

func canViewOrder(a OrderAccess, actorID uuid.UUID, role actor.Role) bool {
	switch role {
	case actor.RoleBuyer:
		return a.BuyerID == actorID
	case actor.RoleSeller:
		return a.SellerID == actorID
	case actor.RoleCourier:
		return a.CourierID != nil && *a.CourierID == actorID
	case actor.RoleSystem:
		return true
	default:
		return false
	}
}
