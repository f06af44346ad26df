//go:build unit

package queries

import (
	"context"
	"testing"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderViewRepo struct {
	views         map[uuid.UUID]*OrderView
	findByIDCalls int
}

func (r *fakeOrderViewRepo) FindByID(_ context.Context, id uuid.UUID) (*OrderView, error) {
	r.findByIDCalls++
	v, ok := r.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return v, nil
}

func (r *fakeOrderViewRepo) FindAccessIDs(_ context.Context, id uuid.UUID) (*OrderAccess, error) {
	v, ok := r.views[id]
	if !ok {
		return nil, infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return &OrderAccess{BuyerID: v.BuyerID, SellerID: v.SellerID, CourierID: v.CourierID}, nil
}

func (r *fakeOrderViewRepo) FindByBuyerFirstPage(context.Context, uuid.UUID, int32) ([]*OrderListItem, error) {
	return nil, nil
}

func (r *fakeOrderViewRepo) FindByBuyerKeyset(context.Context, uuid.UUID, *Cursor, int32) ([]*OrderListItem, error) {
	return nil, nil
}

func (r *fakeOrderViewRepo) FindBySellerFirstPage(context.Context, uuid.UUID, int32) ([]*OrderListItem, error) {
	return nil, nil
}

func (r *fakeOrderViewRepo) FindBySellerKeyset(context.Context, uuid.UUID, *Cursor, int32) ([]*OrderListItem, error) {
	return nil, nil
}

type fakeStatusCache struct {
	statuses map[uuid.UUID]string
}

func (c *fakeStatusCache) GetStatus(_ context.Context, orderID uuid.UUID) (string, bool, error) {
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

func (c *fakeStatusCache) SetStatus(_ context.Context, orderID uuid.UUID, status string) error {
	c.statuses[orderID] = status
	return nil
}

type statusFixture struct {
	repo    *fakeOrderViewRepo
	cache   *fakeStatusCache
	queries OrderQueries
	view    *OrderView
}

func newStatusFixture() *statusFixture {
	view := &OrderView{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   "confirmed",
	}
	repo := &fakeOrderViewRepo{views: map[uuid.UUID]*OrderView{view.ID: view}}
	cache := &fakeStatusCache{statuses: map[uuid.UUID]string{}}
	return &statusFixture{
		repo:    repo,
		cache:   cache,
		queries: NewOrderQueries(repo, cache),
		view:    view,
	}
}

func TestGetStatus_WarmCacheStillChecksAccess(t *testing.T) {
	f := newStatusFixture()
	f.cache.statuses[f.view.ID] = "confirmed"

	_, err := f.queries.GetStatus(context.Background(), uuid.New(), actor.RoleBuyer, f.view.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestGetStatus_WarmCacheServesParty(t *testing.T) {
	f := newStatusFixture()
	f.cache.statuses[f.view.ID] = "confirmed"

	status, err := f.queries.GetStatus(context.Background(), f.view.BuyerID, actor.RoleBuyer, f.view.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status)
	// The hit never touches the full view.
	assert.Zero(t, f.repo.findByIDCalls)
}

func TestGetStatus_ColdCacheFallsBackAndWarms(t *testing.T) {
	f := newStatusFixture()

	status, err := f.queries.GetStatus(context.Background(), f.view.SellerID, actor.RoleSeller, f.view.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status)
	assert.Equal(t, "confirmed", f.cache.statuses[f.view.ID])
}

func TestGetStatus_UnknownOrder(t *testing.T) {
	f := newStatusFixture()

	_, err := f.queries.GetStatus(context.Background(), f.view.BuyerID, actor.RoleBuyer, uuid.New())
	require.Error(t, err)
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestGetStatus_CourierOnlyAfterAssignment(t *testing.T) {
	f := newStatusFixture()
	f.cache.statuses[f.view.ID] = "confirmed"
	courierID := uuid.New()

	_, err := f.queries.GetStatus(context.Background(), courierID, actor.RoleCourier, f.view.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	f.view.CourierID = &courierID
	status, err := f.queries.GetStatus(context.Background(), courierID, actor.RoleCourier, f.view.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status)
}
