//go:build unit

package order_test

import (
	"testing"
	"time"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLines() []order.Line {
	return []order.Line{
		{ProductID: uuid.New(), Title: "Kopi Gayo 250g", UnitPriceCents: 2000, Quantity: 3},
		{ProductID: uuid.New(), Title: "Gula Aren 500g", UnitPriceCents: 1500, Quantity: 2},
	}
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	buyerID := uuid.New()
	sellerID := uuid.New()

	t.Run("computes total from line snapshots", func(t *testing.T) {
		o, err := order.NewOrder(buyerID, sellerID, order.PaymentCOD, "Jl. Merdeka 1", newTestLines(), now)
		require.NoError(t, err)

		assert.Equal(t, int64(2000*3+1500*2), o.TotalCents())
		assert.Equal(t, order.StatusPending, o.Status())
		assert.NotEqual(t, uuid.Nil, o.ID())
		assert.Equal(t, now, o.CreatedAt())
		assert.Nil(t, o.ConfirmedAt())
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name    string
			lines   []order.Line
			payment order.PaymentMethod
			address string
			errIs   error
		}{
			{name: "no lines", lines: nil, payment: order.PaymentCOD, address: "a", errIs: order.ErrNoLines},
			{name: "zero quantity", lines: []order.Line{{ProductID: uuid.New(), Title: "x", UnitPriceCents: 100, Quantity: 0}}, payment: order.PaymentCOD, address: "a", errIs: order.ErrInvalidQuantity},
			{name: "negative price", lines: []order.Line{{ProductID: uuid.New(), Title: "x", UnitPriceCents: -1, Quantity: 1}}, payment: order.PaymentCOD, address: "a", errIs: order.ErrNegativePrice},
			{name: "unknown payment", lines: newTestLines(), payment: "crypto", address: "a", errIs: order.ErrInvalidPayment},
			{name: "empty address", lines: newTestLines(), payment: order.PaymentEWallet, address: "", errIs: order.ErrEmptyAddress},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := order.NewOrder(buyerID, sellerID, tc.payment, tc.address, tc.lines, now)
				assert.ErrorIs(t, err, tc.errIs)
			})
		}
	})

	t.Run("lines are copied defensively", func(t *testing.T) {
		lines := newTestLines()
		o, err := order.NewOrder(buyerID, sellerID, order.PaymentCOD, "Jl. Merdeka 1", lines, now)
		require.NoError(t, err)

		lines[0].Quantity = 99
		got := o.Lines()
		assert.Equal(t, int32(3), got[0].Quantity)

		got[1].UnitPriceCents = 1
		assert.Equal(t, int64(1500), o.Lines()[1].UnitPriceCents)
	})
}

func TestAdvanceTo(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	newPending := func(t *testing.T) *order.Order {
		o, err := order.NewOrder(uuid.New(), uuid.New(), order.PaymentCOD, "Jl. Merdeka 1", newTestLines(), now)
		require.NoError(t, err)
		return o
	}

	t.Run("full happy path records timestamps", func(t *testing.T) {
		o := newPending(t)
		steps := []struct {
			target order.Status
			by     actor.Role
		}{
			{order.StatusConfirmed, actor.RoleSeller},
			{order.StatusDeliveryRequested, actor.RoleSeller},
			{order.StatusAssigned, actor.RoleSystem},
			{order.StatusPickedUp, actor.RoleCourier},
			{order.StatusInTransit, actor.RoleCourier},
			{order.StatusDelivered, actor.RoleCourier},
			{order.StatusCompleted, actor.RoleBuyer},
		}

		at := now
		for _, s := range steps {
			at = at.Add(time.Minute)
			require.NoError(t, o.AdvanceTo(s.target, s.by, at))
			assert.Equal(t, s.target, o.Status())
		}

		require.NotNil(t, o.ConfirmedAt())
		require.NotNil(t, o.DeliveredAt())
		require.NotNil(t, o.CompletedAt())
		assert.True(t, o.ConfirmedAt().Before(*o.DeliveredAt()))
		assert.True(t, o.DeliveredAt().Before(*o.CompletedAt()))
	})

	t.Run("skipping states is rejected", func(t *testing.T) {
		o := newPending(t)
		err := o.AdvanceTo(order.StatusDelivered, actor.RoleCourier, now)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.StatusPending, o.Status())
	})

	t.Run("wrong actor is rejected without state change", func(t *testing.T) {
		o := newPending(t)
		err := o.AdvanceTo(order.StatusConfirmed, actor.RoleBuyer, now)
		assert.ErrorIs(t, err, order.ErrActorNotAllowed)
		assert.Equal(t, order.StatusPending, o.Status())
	})

	t.Run("buyer can cancel a pending order", func(t *testing.T) {
		o := newPending(t)
		require.NoError(t, o.AdvanceTo(order.StatusCancelled, actor.RoleBuyer, now))
		assert.Equal(t, order.StatusCancelled, o.Status())
	})

	t.Run("terminal orders refuse further transitions", func(t *testing.T) {
		o := newPending(t)
		require.NoError(t, o.AdvanceTo(order.StatusCancelled, actor.RoleSeller, now))
		err := o.AdvanceTo(order.StatusConfirmed, actor.RoleSeller, now)
		assert.ErrorIs(t, err, order.ErrOrderAlreadyClosed)
	})

	t.Run("total never changes across transitions", func(t *testing.T) {
		o := newPending(t)
		total := o.TotalCents()
		require.NoError(t, o.AdvanceTo(order.StatusConfirmed, actor.RoleSeller, now))
		require.NoError(t, o.AdvanceTo(order.StatusDeliveryRequested, actor.RoleSeller, now))
		assert.Equal(t, total, o.TotalCents())
	})
}
