package shared

import (
	"context"
	"time"

	"pasarlink/internal/domain/cart"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/domain/rewards"

	"github.com/google/uuid"
)

// UnitOfWork runs a function inside one database transaction. Everything done
// through the Tx either commits together or not at all; retryable serialization
// failures are retried with backoff by the implementation.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx hands out repositories bound to the current transaction.
type Tx interface {
	Carts() CartRepository
	Inventory() InventoryRepository
	Orders() OrderRepository
	Points() PointsRepository
	Couriers() CourierRepository
	Offers() OfferRepository
	Idempotency() IdempotencyRepository
	RewardsConfigs() RewardsConfigRepository
}

type CartRepository interface {
	// FindByBuyerSeller returns KindNotFound when no cart exists for the pair.
	FindByBuyerSeller(ctx context.Context, buyerID, sellerID uuid.UUID) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Clear(ctx context.Context, buyerID, sellerID uuid.UUID) error
}

type InventoryRepository interface {
	// Snapshot returns the live inventory rows for the given products; missing
	// or inactive products are simply absent from the result.
	Snapshot(ctx context.Context, sellerID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]InventorySnapshot, error)
	// Reserve atomically checks stock >= quantity and decrements in the same
	// statement. ok=false means insufficient stock (or inactive product), with
	// no change applied.
	Reserve(ctx context.Context, sellerID, productID uuid.UUID, quantity int32) (ok bool, err error)
	Restore(ctx context.Context, sellerID, productID uuid.UUID, quantity int32) error
}

type OrderRepository interface {
	// Create persists the order and its lines as one unit.
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// FindByIDForUpdate row-locks the order for the remainder of the tx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	// UpdateStatus persists the entity's current status and timestamps, guarded
	// by WHERE status = expectedFrom. KindConflict when the guard misses.
	UpdateStatus(ctx context.Context, o *order.Order, expectedFrom order.Status) error
	// SumCompletedTotals is the buyer's lifetime completed spend with a seller,
	// used for rewards tier selection.
	SumCompletedTotals(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error)
	// FindAwaitingDispatch lists orders in delivery_requested with no live offer,
	// oldest first, row-locked with SKIP LOCKED so sweeps do not collide.
	FindAwaitingDispatch(ctx context.Context, limit int32) ([]uuid.UUID, error)
}

type PointsEntry struct {
	BuyerID     uuid.UUID
	SellerID    uuid.UUID
	OrderID     uuid.UUID
	PointsDelta int64
	Reason      string
	CreatedAt   time.Time
}

type PointsRepository interface {
	// Insert is idempotent on (order_id, reason); inserted=false means an entry
	// already existed and nothing was written.
	Insert(ctx context.Context, entry PointsEntry) (inserted bool, err error)
	FindByOrderAndReason(ctx context.Context, orderID uuid.UUID, reason string) (*PointsEntry, error)
	Balance(ctx context.Context, buyerID, sellerID uuid.UUID) (int64, error)
}

type CourierRepository interface {
	UpsertHeartbeat(ctx context.Context, courierID uuid.UUID, available bool, loc *dispatch.Location, at time.Time) error
	SetAvailability(ctx context.Context, courierID uuid.UUID, available bool) error
	// PickEligible selects one available courier without a pending offer,
	// excluding the given ids, least recently offered first. Returns
	// KindNotFound when no courier qualifies. The picked row stays locked for
	// the rest of the tx (SKIP LOCKED keeps concurrent dispatchers apart).
	PickEligible(ctx context.Context, excluded []uuid.UUID) (uuid.UUID, error)
	MarkOffered(ctx context.Context, courierID uuid.UUID, at time.Time) error
}

type OfferRepository interface {
	// CreatePending inserts a pending offer. KindConflict when the order already
	// has one (partial unique index enforces at most one).
	CreatePending(ctx context.Context, o *dispatch.Offer) error
	// Resolve flips a pending offer to the target status, guarded by
	// WHERE status='pending' (and courier when given). KindConflict when the
	// offer was already resolved by someone else.
	Resolve(ctx context.Context, offerID uuid.UUID, courierID *uuid.UUID, to dispatch.OfferStatus) (*dispatch.Offer, error)
	// ExpireDue CAS-expires every pending offer past its deadline and returns
	// the offers it expired.
	ExpireDue(ctx context.Context, now time.Time) ([]*dispatch.Offer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Offer, error)
	FindPendingByOrder(ctx context.Context, orderID uuid.UUID) (*dispatch.Offer, error)
}

type IdempotencyRecord struct {
	Key           uuid.UUID
	BuyerID       uuid.UUID
	Endpoint      string
	RequestHash   string
	Status        string // processing | completed
	ResultOrderID *uuid.UUID
	ExpiresAt     time.Time
}

type IdempotencyRepository interface {
	// TryInsert claims the key with status=processing. inserted=false means the
	// key already existed (ON CONFLICT DO NOTHING) and this request lost the race.
	TryInsert(ctx context.Context, key, buyerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (inserted bool, err error)
	Get(ctx context.Context, key, buyerID uuid.UUID) (*IdempotencyRecord, error)
	MarkCompleted(ctx context.Context, key, buyerID uuid.UUID, resultOrderID uuid.UUID) error
}

type RewardsConfigRepository interface {
	// FindBySeller returns a disabled policy when the seller has none configured.
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (rewards.Policy, error)
}

type InventorySnapshot struct {
	ProductID      uuid.UUID
	Title          string
	UnitPriceCents int64
	Stock          int32
	Active         bool
}
