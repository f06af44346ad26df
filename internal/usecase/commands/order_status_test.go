//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/dispatch"
	"pasarlink/internal/domain/order"
	"pasarlink/internal/domain/rewards"
	"pasarlink/internal/events"
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/pkg/config"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	store   *fakeStore
	cache   *fakeCache
	emitter *fakeEmitter
	orders  commands.OrderCommands
	now     time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := newFakeStore()
	cache := newFakeCache()
	emitter := &fakeEmitter{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	return &orderFixture{
		store:   store,
		cache:   cache,
		emitter: emitter,
		orders: commands.NewOrderUseCase(
			&fakeUoW{store: store},
			cache,
			emitter,
			clock.NewMockClock(now),
			config.DispatchConfig{OfferTTL: 2 * time.Minute, SweepInterval: time.Minute},
		),
		now: now,
	}
}

func (f *orderFixture) seedOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), uuid.New(), order.PaymentCOD, "Jl. Gatot Subroto 5", []order.Line{
		{ProductID: uuid.New(), Title: "gado gado", UnitPriceCents: 3500, Quantity: 2},
	}, f.now)
	require.NoError(t, err)

	stored := order.Reconstruct(
		o.ID(), o.BuyerID(), o.SellerID(), status, o.PaymentMethod(),
		o.DeliveryAddress(), o.TotalCents(), o.Lines(), nil,
		o.CreatedAt(), nil, nil, nil, o.UpdatedAt(),
	)
	f.store.addOrder(stored)
	return stored
}

func TestAdvanceStatus_SellerConfirms(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)

	result, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, result.From)
	assert.Equal(t, order.StatusConfirmed, result.To)

	assert.Equal(t, order.StatusConfirmed, f.store.orders[o.ID()].Status())
	assert.Equal(t, "confirmed", f.cache.statuses[o.ID()])
	assert.Equal(t, []string{events.EventOrderStatusChanged}, f.emitter.typesEmitted())
}

func TestAdvanceStatus_UnknownOrder(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.AdvanceStatus(context.Background(), uuid.New(), actor.RoleSeller, uuid.New(), order.StatusConfirmed)
	assert.ErrorIs(t, err, commands.ErrOrderNotFound)
}

func TestAdvanceStatus_WrongActorIdentity(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)

	_, err := f.orders.AdvanceStatus(context.Background(), uuid.New(), actor.RoleSeller, o.ID(), order.StatusConfirmed)
	assert.ErrorIs(t, err, commands.ErrOrderAccessDenied)
}

func TestAdvanceStatus_RoleNotAllowedForTransition(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)

	// Only the seller confirms.
	_, err := f.orders.AdvanceStatus(context.Background(), o.BuyerID(), actor.RoleBuyer, o.ID(), order.StatusConfirmed)
	assert.ErrorIs(t, err, commands.ErrInvalidTransition)
}

func TestAdvanceStatus_NoEdgeInLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusDelivered)
	assert.ErrorIs(t, err, commands.ErrInvalidTransition)
}

func TestAdvanceStatus_TerminalOrderRejected(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusCompleted)

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusCancelled)
	assert.ErrorIs(t, err, commands.ErrInvalidTransition)
}

func TestAdvanceStatus_DeliveryRequestedIssuesOffer(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusConfirmed)
	courierID := uuid.New()
	f.store.addCourier(courierID, true)

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusDeliveryRequested)
	require.NoError(t, err)

	offer := f.store.pendingOfferForOrder(o.ID())
	require.NotNil(t, offer)
	assert.Equal(t, courierID, offer.CourierID())
	assert.Equal(t, f.now.Add(2*time.Minute), offer.ExpiresAt())
	assert.Equal(t, []string{events.EventOrderStatusChanged, events.EventOfferCreated}, f.emitter.typesEmitted())
}

func TestAdvanceStatus_DeliveryRequestedWithNoCourier(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusConfirmed)

	// No courier online. The transition still succeeds; dispatch waits for the
	// next sweep.
	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusDeliveryRequested)
	require.NoError(t, err)

	assert.Nil(t, f.store.pendingOfferForOrder(o.ID()))
	assert.Equal(t, []string{events.EventOrderStatusChanged}, f.emitter.typesEmitted())
}

func TestAdvanceStatus_AccrualAtConfirmedStage(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)
	f.store.policies[o.SellerID()] = rewards.Policy{
		Enabled:               true,
		Stage:                 rewards.StageConfirmed,
		PointsPerCurrencyUnit: 1,
	}

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusConfirmed)
	require.NoError(t, err)

	entry, ok := f.store.points[pointsKey(o.ID(), rewards.ReasonEarn)]
	require.True(t, ok)
	// 7000 cents -> 70 currency units -> 70 points at 1x.
	assert.Equal(t, int64(70), entry.PointsDelta)
	assert.Contains(t, f.emitter.typesEmitted(), events.EventPointsAccrued)
}

func TestAdvanceStatus_NoAccrualAtOtherStage(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusPending)
	f.store.policies[o.SellerID()] = rewards.Policy{
		Enabled:               true,
		Stage:                 rewards.StageCompleted,
		PointsPerCurrencyUnit: 1,
	}

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusConfirmed)
	require.NoError(t, err)

	_, ok := f.store.points[pointsKey(o.ID(), rewards.ReasonEarn)]
	assert.False(t, ok)
}

func TestAdvanceStatus_TierMultiplierApplies(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusDelivered)
	f.store.policies[o.SellerID()] = rewards.Policy{
		Enabled:               true,
		Stage:                 rewards.StageCompleted,
		PointsPerCurrencyUnit: 1,
		Tiers: []rewards.Tier{
			{MinCumulativeSpendCents: 0, Multiplier: 1},
			{MinCumulativeSpendCents: 5000, Multiplier: 2},
		},
	}

	// A prior completed order pushes the buyer over the tier threshold.
	prior := order.Reconstruct(
		uuid.New(), o.BuyerID(), o.SellerID(), order.StatusCompleted, order.PaymentCOD,
		"Jl. Gatot Subroto 5", 6000, o.Lines(), nil, f.now, nil, nil, nil, f.now,
	)
	f.store.addOrder(prior)

	_, err := f.orders.AdvanceStatus(context.Background(), o.BuyerID(), actor.RoleBuyer, o.ID(), order.StatusCompleted)
	require.NoError(t, err)

	entry := f.store.points[pointsKey(o.ID(), rewards.ReasonEarn)]
	// The order itself completes first, so cumulative spend includes it too.
	assert.Equal(t, int64(140), entry.PointsDelta)
}

func TestAdvanceStatus_CancellationRestoresStockAndCompensatesPoints(t *testing.T) {
	f := newOrderFixture(t)
	productID := f.store.addStock("gado gado", 3500, 0)

	o, err := order.NewOrder(uuid.New(), uuid.New(), order.PaymentCOD, "Jl. Gatot Subroto 5", []order.Line{
		{ProductID: productID, Title: "gado gado", UnitPriceCents: 3500, Quantity: 2},
	}, f.now)
	require.NoError(t, err)
	stored := order.Reconstruct(
		o.ID(), o.BuyerID(), o.SellerID(), order.StatusConfirmed, o.PaymentMethod(),
		o.DeliveryAddress(), o.TotalCents(), o.Lines(), nil,
		o.CreatedAt(), nil, nil, nil, o.UpdatedAt(),
	)
	f.store.addOrder(stored)

	// Points already earned at confirmation.
	f.store.points[pointsKey(o.ID(), rewards.ReasonEarn)] = shared.PointsEntry{
		BuyerID: o.BuyerID(), SellerID: o.SellerID(), OrderID: o.ID(),
		PointsDelta: 70, Reason: rewards.ReasonEarn, CreatedAt: f.now,
	}

	_, err = f.orders.AdvanceStatus(context.Background(), o.BuyerID(), actor.RoleBuyer, o.ID(), order.StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.store.inventory[productID].snapshot.Stock)

	comp, ok := f.store.points[pointsKey(o.ID(), rewards.ReasonCompensate)]
	require.True(t, ok)
	assert.Equal(t, int64(-70), comp.PointsDelta)
}

func TestAdvanceStatus_CancellationCancelsPendingOffer(t *testing.T) {
	f := newOrderFixture(t)
	o := f.seedOrder(t, order.StatusDeliveryRequested)

	courierID := uuid.New()
	f.store.addCourier(courierID, true)
	offer := dispatch.NewOffer(o.ID(), courierID, f.now, 2*time.Minute)
	f.store.offers[offer.ID()] = offer

	_, err := f.orders.AdvanceStatus(context.Background(), o.SellerID(), actor.RoleSeller, o.ID(), order.StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, dispatch.OfferCancelled, f.store.offers[offer.ID()].Status())
}
