package cart_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/testutil/testdb"
)

type memoryGuestStore struct {
	mu    sync.Mutex
	carts map[string]cart.GuestCart
}

func newMemoryGuestStore() *memoryGuestStore {
	return &memoryGuestStore{carts: map[string]cart.GuestCart{}}
}

func (m *memoryGuestStore) Get(_ context.Context, sessionID string) (*cart.GuestCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.carts[sessionID]; ok {
		g.Items = append([]cart.GuestItem(nil), g.Items...)
		return &g, nil
	}
	now := time.Now().UTC()
	return &cart.GuestCart{SessionID: sessionID, Items: []cart.GuestItem{}, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *memoryGuestStore) Save(_ context.Context, g *cart.GuestCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.UpdatedAt = time.Now().UTC()
	stored := *g
	stored.Items = append([]cart.GuestItem(nil), g.Items...)
	m.carts[g.SessionID] = stored
	return nil
}

func (m *memoryGuestStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *memoryGuestStore) has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[sessionID]
	return ok
}

func TestGuestCart_AddMergesAndPrices(t *testing.T) {
	store := newMemoryGuestStore()
	svc, db := newService(t, store)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)

	_, err := svc.AddGuestItem(ctx, "sess-1", &cart.AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.AddGuestItem(ctx, "sess-1", &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, "sess-1", view.SessionID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, "37.50", view.Subtotal.StringFixed(2))

	_, err = svc.AddGuestItem(ctx, "sess-1", &cart.AddItemRequest{ProductID: p.ID, Quantity: 8})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	view, err = svc.RemoveGuestItem(ctx, "sess-1", p.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = svc.RemoveGuestItem(ctx, "sess-1", p.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestGuestCart_RequiresSessionAndStore(t *testing.T) {
	svc, _ := newService(t, newMemoryGuestStore())
	_, err := svc.GetGuestCart(context.Background(), "")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	disabled, _ := newService(t, nil)
	_, err = disabled.GetGuestCart(context.Background(), "sess-1")
	assert.True(t, apperror.Is(err, apperror.KindInternal))
}

func TestMergeGuestCart_SkipsLinesThatDoNotFit(t *testing.T) {
	store := newMemoryGuestStore()
	svc, db := newService(t, store)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	plenty := testdb.CreateProduct(t, db, seller.ID, "Plenty", "5.00", 10)
	scarce := testdb.CreateProduct(t, db, seller.ID, "Scarce", "9.00", 3)

	_, err := svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: plenty.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: scarce.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = svc.AddGuestItem(ctx, "sess-9", &cart.AddItemRequest{ProductID: plenty.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddGuestItem(ctx, "sess-9", &cart.AddItemRequest{ProductID: scarce.ID, Quantity: 2})
	require.NoError(t, err)

	gone := uuid.New()
	require.NoError(t, store.Save(ctx, appendGuestLine(t, store, "sess-9", gone, 1)))

	result, err := svc.MergeGuestCart(ctx, buyer.ID, "sess-9")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Merged)
	require.Len(t, result.Skipped, 2)
	skipped := map[uuid.UUID]string{}
	for _, s := range result.Skipped {
		skipped[s.ProductID] = s.Reason
	}
	assert.Contains(t, skipped[scarce.ID], "requested 4, available 3")
	assert.Contains(t, skipped[gone], "not found")

	quantities := map[uuid.UUID]int{}
	for _, item := range result.Cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 5, quantities[plenty.ID])
	assert.Equal(t, 2, quantities[scarce.ID])
	assert.False(t, store.has("sess-9"))
}

func appendGuestLine(t *testing.T, store *memoryGuestStore, sessionID string, productID uuid.UUID, qty int) *cart.GuestCart {
	t.Helper()
	g, err := store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	g.Items = append(g.Items, cart.GuestItem{ProductID: productID, Quantity: qty, AddedAt: time.Now().UTC()})
	return g
}
