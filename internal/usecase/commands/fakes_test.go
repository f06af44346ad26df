//go:build unit

package commands_test

import (
	"context"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/cart"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/domain/rewards"
	"pasarlink/internal/infra"
	"pasarlink/internal/usecase/queries"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the database that preserves the
// guarded-update semantics the usecases rely on: conditional stock decrements,
// CAS offer resolution and status updates guarded on the previous value.
type fakeStore struct {
	carts       map[[2]uuid.UUID]*cart.Cart
	inventory   map[uuid.UUID]*fakeStockRow
	orders      map[uuid.UUID]*order.Order
	offers      map[uuid.UUID]*dispatch.Offer
	couriers    map[uuid.UUID]*fakeCourierRow
	points      map[[2]string]shared.PointsEntry // key: order id + reason
	idempotency map[[2]uuid.UUID]*shared.IdempotencyRecord
	policies    map[uuid.UUID]rewards.Policy
}

type fakeStockRow struct {
	snapshot shared.InventorySnapshot
}

type fakeCourierRow struct {
	available     bool
	lastOfferedAt *time.Time
	heartbeatAt   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		carts:       map[[2]uuid.UUID]*cart.Cart{},
		inventory:   map[uuid.UUID]*fakeStockRow{},
		orders:      map[uuid.UUID]*order.Order{},
		offers:      map[uuid.UUID]*dispatch.Offer{},
		couriers:    map[uuid.UUID]*fakeCourierRow{},
		points:      map[[2]string]shared.PointsEntry{},
		idempotency: map[[2]uuid.UUID]*shared.IdempotencyRecord{},
		policies:    map[uuid.UUID]rewards.Policy{},
	}
}

func (s *fakeStore) addStock(title string, priceCents int64, stock int32) uuid.UUID {
	id := uuid.New()
	s.inventory[id] = &fakeStockRow{snapshot: shared.InventorySnapshot{
		ProductID:      id,
		Title:          title,
		UnitPriceCents: priceCents,
		Stock:          stock,
		Active:         true,
	}}
	return id
}

func (s *fakeStore) addCart(buyerID, sellerID uuid.UUID, now time.Time, lines ...cart.Line) {
	s.carts[[2]uuid.UUID{buyerID, sellerID}] = cart.Reconstruct(buyerID, sellerID, lines, now, now)
}

func (s *fakeStore) addOrder(o *order.Order) {
	s.orders[o.ID()] = cloneOrder(o)
}

func (s *fakeStore) addCourier(id uuid.UUID, available bool) {
	s.couriers[id] = &fakeCourierRow{available: available}
}

func cloneOrder(o *order.Order) *order.Order {
	return order.Reconstruct(
		o.ID(), o.BuyerID(), o.SellerID(), o.Status(), o.PaymentMethod(),
		o.DeliveryAddress(), o.TotalCents(), o.Lines(), o.CourierID(),
		o.CreatedAt(), o.ConfirmedAt(), o.DeliveredAt(), o.CompletedAt(), o.UpdatedAt(),
	)
}

func cloneOffer(o *dispatch.Offer) *dispatch.Offer {
	return dispatch.ReconstructOffer(o.ID(), o.OrderID(), o.CourierID(), o.Status(), o.CreatedAt(), o.ExpiresAt())
}

// fakeUoW runs the function directly against the shared store. No rollback:
// tests assert on the final state of successful flows and on returned errors.
type fakeUoW struct {
	store *fakeStore
}

func (u *fakeUoW) Within(_ context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(context.Background(), &fakeTx{store: u.store})
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Carts() shared.CartRepository { return &fakeCartRepo{t.store} }
func (t *fakeTx) Inventory() shared.InventoryRepository { return &fakeInventoryRepo{t.store} }
func (t *fakeTx) Orders() shared.OrderRepository { return &fakeOrderRepo{t.store} }
func (t *fakeTx) Points() shared.PointsRepository { return &fakePointsRepo{t.store} }
func (t *fakeTx) Couriers() shared.CourierRepository { return &fakeCourierRepo{t.store} }
func (t *fakeTx) Offers() shared.OfferRepository { return &fakeOfferRepo{t.store} }
func (t *fakeTx) Idempotency() shared.IdempotencyRepository { return &fakeIdempotencyRepo{t.store} }
func (t *fakeTx) RewardsConfigs() shared.RewardsConfigRepository { return &fakeRewardsRepo{t.store} }

type fakeCartRepo struct{ s *fakeStore }

func (r *fakeCartRepo) FindByBuyerSeller(_ context.Context, buyerID, sellerID uuid.UUID) (*cart.Cart, error) {
	c, ok := r.s.carts[[2]uuid.UUID{buyerID, sellerID}]
	if !ok {
		return nil, infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return c, nil
}

func (r *fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.s.carts[[2]uuid.UUID{c.BuyerID(), c.SellerID()}] = c
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, buyerID, sellerID uuid.UUID) error {
	delete(r.s.carts, [2]uuid.UUID{buyerID, sellerID})
	return nil
}

type fakeInventoryRepo struct{ s *fakeStore }

func (r *fakeInventoryRepo) Snapshot(_ context.Context, _ uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]shared.InventorySnapshot, error) {
	out := map[uuid.UUID]shared.InventorySnapshot{}
	for _, id := range productIDs {
		if row, ok := r.s.inventory[id]; ok {
			out[id] = row.snapshot
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) Reserve(_ context.Context, _ uuid.UUID, productID uuid.UUID, quantity int32) (bool, error) {
	row, ok := r.s.inventory[productID]
	if !ok || !row.snapshot.Active || row.snapshot.Stock < quantity {
		return false, nil
	}
	row.snapshot.Stock -= quantity
	return true, nil
}

func (r *fakeInventoryRepo) Restore(_ context.Context, _ uuid.UUID, productID uuid.UUID, quantity int32) error {
	row, ok := r.s.inventory[productID]
	if !ok {
		return infra.WrapRepoErr("inventory row not found", nil, infra.KindNotFound)
	}
	row.snapshot.Stock += quantity
	return nil
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.s.orders[o.ID()] = cloneOrder(o)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, o *order.Order, expectedFrom order.Status) error {
	stored, ok := r.s.orders[o.ID()]
	if !ok || stored.Status() != expectedFrom {
		return infra.WrapRepoErr("order status changed concurrently", nil, infra.KindConflict)
	}
	r.s.orders[o.ID()] = cloneOrder(o)
	return nil
}

func (r *fakeOrderRepo) SumCompletedTotals(_ context.Context, buyerID, sellerID uuid.UUID) (int64, error) {
	var total int64
	for _, o := range r.s.orders {
		if o.BuyerID() == buyerID && o.SellerID() == sellerID && o.Status() == order.StatusCompleted {
			total += o.TotalCents()
		}
	}
	return total, nil
}

func (r *fakeOrderRepo) FindAwaitingDispatch(_ context.Context, limit int32) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, o := range r.s.orders {
		if o.Status() != order.StatusDeliveryRequested {
			continue
		}
		if r.s.pendingOfferForOrder(id) != nil {
			continue
		}
		ids = append(ids, id)
		if int32(len(ids)) == limit {
			break
		}
	}
	return ids, nil
}

type fakePointsRepo struct{ s *fakeStore }

func pointsKey(orderID uuid.UUID, reason string) [2]string {
	return [2]string{orderID.String(), reason}
}

func (r *fakePointsRepo) Insert(_ context.Context, entry shared.PointsEntry) (bool, error) {
	key := pointsKey(entry.OrderID, entry.Reason)
	if _, exists := r.s.points[key]; exists {
		return false, nil
	}
	r.s.points[key] = entry
	return true, nil
}

func (r *fakePointsRepo) FindByOrderAndReason(_ context.Context, orderID uuid.UUID, reason string) (*shared.PointsEntry, error) {
	entry, ok := r.s.points[pointsKey(orderID, reason)]
	if !ok {
		return nil, infra.WrapRepoErr("points entry not found", nil, infra.KindNotFound)
	}
	return &entry, nil
}

func (r *fakePointsRepo) Balance(_ context.Context, buyerID, sellerID uuid.UUID) (int64, error) {
	var balance int64
	for _, e := range r.s.points {
		if e.BuyerID == buyerID && e.SellerID == sellerID {
			balance += e.PointsDelta
		}
	}
	return balance, nil
}

type fakeCourierRepo struct{ s *fakeStore }

func (r *fakeCourierRepo) UpsertHeartbeat(_ context.Context, courierID uuid.UUID, available bool, _ *dispatch.Location, at time.Time) error {
	row, ok := r.s.couriers[courierID]
	if !ok {
		row = &fakeCourierRow{}
		r.s.couriers[courierID] = row
	}
	row.available = available
	row.heartbeatAt = at
	return nil
}

func (r *fakeCourierRepo) SetAvailability(_ context.Context, courierID uuid.UUID, available bool) error {
	row, ok := r.s.couriers[courierID]
	if !ok {
		return infra.WrapRepoErr("courier not found", nil, infra.KindNotFound)
	}
	row.available = available
	return nil
}

func (r *fakeCourierRepo) PickEligible(_ context.Context, excluded []uuid.UUID) (uuid.UUID, error) {
	isExcluded := func(id uuid.UUID) bool {
		for _, e := range excluded {
			if e == id {
				return true
			}
		}
		return false
	}

	var (
		best   uuid.UUID
		bestAt *time.Time
		found  bool
	)
	for id, row := range r.s.couriers {
		if !row.available || isExcluded(id) || r.s.pendingOfferForCourier(id) != nil {
			continue
		}
		// Least recently offered first; never-offered couriers sort before all.
		if !found {
			best, bestAt, found = id, row.lastOfferedAt, true
			continue
		}
		if bestAt != nil && (row.lastOfferedAt == nil || row.lastOfferedAt.Before(*bestAt)) {
			best, bestAt = id, row.lastOfferedAt
		}
	}
	if !found {
		return uuid.Nil, infra.WrapRepoErr("no eligible courier", nil, infra.KindNotFound)
	}
	return best, nil
}

func (r *fakeCourierRepo) MarkOffered(_ context.Context, courierID uuid.UUID, at time.Time) error {
	if row, ok := r.s.couriers[courierID]; ok {
		t := at
		row.lastOfferedAt = &t
	}
	return nil
}

type fakeOfferRepo struct{ s *fakeStore }

func (s *fakeStore) pendingOfferForOrder(orderID uuid.UUID) *dispatch.Offer {
	for _, o := range s.offers {
		if o.OrderID() == orderID && o.Status() == dispatch.OfferPending {
			return o
		}
	}
	return nil
}

func (s *fakeStore) pendingOfferForCourier(courierID uuid.UUID) *dispatch.Offer {
	for _, o := range s.offers {
		if o.CourierID() == courierID && o.Status() == dispatch.OfferPending {
			return o
		}
	}
	return nil
}

func (r *fakeOfferRepo) CreatePending(_ context.Context, o *dispatch.Offer) error {
	if r.s.pendingOfferForOrder(o.OrderID()) != nil {
		return infra.WrapRepoErr("order already has a pending offer", nil, infra.KindConflict)
	}
	r.s.offers[o.ID()] = cloneOffer(o)
	return nil
}

func (r *fakeOfferRepo) Resolve(_ context.Context, offerID uuid.UUID, courierID *uuid.UUID, to dispatch.OfferStatus) (*dispatch.Offer, error) {
	stored, ok := r.s.offers[offerID]
	if !ok || stored.Status() != dispatch.OfferPending {
		return nil, infra.WrapRepoErr("offer already resolved", nil, infra.KindConflict)
	}
	if courierID != nil && stored.CourierID() != *courierID {
		return nil, infra.WrapRepoErr("offer already resolved", nil, infra.KindConflict)
	}
	resolved := dispatch.ReconstructOffer(stored.ID(), stored.OrderID(), stored.CourierID(), to, stored.CreatedAt(), stored.ExpiresAt())
	r.s.offers[offerID] = resolved
	return cloneOffer(resolved), nil
}

func (r *fakeOfferRepo) ExpireDue(_ context.Context, now time.Time) ([]*dispatch.Offer, error) {
	var expired []*dispatch.Offer
	for id, o := range r.s.offers {
		if o.Status() == dispatch.OfferPending && o.IsDue(now) {
			e := dispatch.ReconstructOffer(o.ID(), o.OrderID(), o.CourierID(), dispatch.OfferExpired, o.CreatedAt(), o.ExpiresAt())
			r.s.offers[id] = e
			expired = append(expired, cloneOffer(e))
		}
	}
	return expired, nil
}

func (r *fakeOfferRepo) FindByID(_ context.Context, id uuid.UUID) (*dispatch.Offer, error) {
	o, ok := r.s.offers[id]
	if !ok {
		return nil, infra.WrapRepoErr("offer not found", nil, infra.KindNotFound)
	}
	return cloneOffer(o), nil
}

func (r *fakeOfferRepo) FindPendingByOrder(_ context.Context, orderID uuid.UUID) (*dispatch.Offer, error) {
	if o := r.s.pendingOfferForOrder(orderID); o != nil {
		return cloneOffer(o), nil
	}
	return nil, infra.WrapRepoErr("no pending offer", nil, infra.KindNotFound)
}

type fakeIdempotencyRepo struct{ s *fakeStore }

func (r *fakeIdempotencyRepo) TryInsert(_ context.Context, key, buyerID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	k := [2]uuid.UUID{key, buyerID}
	if _, exists := r.s.idempotency[k]; exists {
		return false, nil
	}
	r.s.idempotency[k] = &shared.IdempotencyRecord{
		Key:         key,
		BuyerID:     buyerID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      "processing",
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *fakeIdempotencyRepo) Get(_ context.Context, key, buyerID uuid.UUID) (*shared.IdempotencyRecord, error) {
	rec, ok := r.s.idempotency[[2]uuid.UUID{key, buyerID}]
	if !ok {
		return nil, infra.WrapRepoErr("idempotency key not found", nil, infra.KindNotFound)
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeIdempotencyRepo) MarkCompleted(_ context.Context, key, buyerID uuid.UUID, resultOrderID uuid.UUID) error {
	rec, ok := r.s.idempotency[[2]uuid.UUID{key, buyerID}]
	if !ok || rec.Status != "processing" {
		return infra.WrapRepoErr("idempotency key not in processing state", nil, infra.KindConflict)
	}
	rec.Status = "completed"
	rec.ResultOrderID = &resultOrderID
	return nil
}

type fakeRewardsRepo struct{ s *fakeStore }

func (r *fakeRewardsRepo) FindBySeller(_ context.Context, sellerID uuid.UUID) (rewards.Policy, error) {
	if policy, ok := r.s.policies[sellerID]; ok {
		return policy, nil
	}
	return rewards.Policy{Enabled: false}, nil
}

// fakeCache records status writes; reads always miss so queries hit the store.
type fakeCache struct {
	statuses map[uuid.UUID]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: map[uuid.UUID]string{}}
}

func (c *fakeCache) GetStatus(_ context.Context, orderID uuid.UUID) (string, bool, error) {
	status, ok := c.statuses[orderID]
	return status, ok, nil
}

func (c *fakeCache) SetStatus(_ context.Context, orderID uuid.UUID, status string) error {
	c.statuses[orderID] = status
	return nil
}

type emittedEvent struct {
	topic         string
	eventType     string
	correlationID uuid.UUID
	payload       any
}

type fakeEmitter struct {
	events []emittedEvent
}

func (e *fakeEmitter) Emit(_ context.Context, topic, eventType string, correlationID uuid.UUID, payload any) {
	e.events = append(e.events, emittedEvent{topic, eventType, correlationID, payload})
}

func (e *fakeEmitter) typesEmitted() []string {
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.eventType
	}
	return out
}

// fakeOrderQueries serves order views straight off the fake store.
type fakeOrderQueries struct {
	store *fakeStore
}

func (q *fakeOrderQueries) GetByID(_ context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (*queries.OrderView, error) {
	o, ok := q.store.orders[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	if role == actor.RoleBuyer && o.BuyerID() != actorID {
		return nil, queries.ErrOrderAccessDenied
	}

	lines := make([]queries.OrderLineView, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		lines = append(lines, queries.OrderLineView{
			ProductID:      l.ProductID,
			Title:          l.Title,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
		})
	}
	return &queries.OrderView{
		ID:              o.ID(),
		BuyerID:         o.BuyerID(),
		SellerID:        o.SellerID(),
		Status:          o.Status().String(),
		PaymentMethod:   o.PaymentMethod().String(),
		DeliveryAddress: o.DeliveryAddress(),
		TotalCents:      o.TotalCents(),
		CourierID:       o.CourierID(),
		Lines:           lines,
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}, nil
}

func (q *fakeOrderQueries) ListByBuyer(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.OrderListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

func (q *fakeOrderQueries) ListBySeller(context.Context, uuid.UUID, *queries.Cursor, int) ([]*queries.OrderListItem, *queries.Cursor, error) {
	return nil, nil, nil
}

func (q *fakeOrderQueries) GetStatus(ctx context.Context, actorID uuid.UUID, role actor.Role, id uuid.UUID) (string, error) {
	view, err := q.GetByID(ctx, actorID, role, id)
	if err != nil {
		return "", err
	}
	return view.Status, nil
}
