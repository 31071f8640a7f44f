package wishlist_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/domain/wishlist"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
	"github.com/your-org/marketplace-core/internal/testutil/testdb"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*wishlist.Service, *cart.Service, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	log, _ := logtest.NewNullLogger()
	carts := cart.NewService(db, nil, nil, log)
	return wishlist.NewService(db, carts, log), carts, db
}

func TestAddItem_IsIdempotent(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)

	first, err := svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "Mug", first.ProductName)
	assert.Equal(t, "12.50", first.CurrentPrice.StringFixed(2))
	assert.True(t, first.IsAvailable)

	second, err := svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	page, err := svc.GetWishlist(ctx, buyer.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.EqualValues(t, 1, page.Pagination.Total)
}

func TestAddItem_Rejections(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	retired := testdb.CreateProduct(t, db, seller.ID, "Retired", "5.00", 3)
	testdb.Deactivate(t, db, retired.ID)

	tests := []struct {
		name      string
		productID uuid.UUID
		kind      apperror.Kind
	}{
		{"unknown product", uuid.New(), apperror.KindNotFound},
		{"inactive product", retired.ID, apperror.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: tt.productID})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestGetWishlist_IsPerCustomer(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	other := testdb.CreateCustomer(t, db, "other@example.com")
	mug := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)
	lamp := testdb.CreateProduct(t, db, seller.ID, "Lamp", "40.00", 0)

	for _, id := range []uuid.UUID{mug.ID, lamp.ID} {
		_, err := svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: id})
		require.NoError(t, err)
	}

	page, err := svc.GetWishlist(ctx, buyer.ID, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	available := map[string]bool{}
	for _, item := range page.Items {
		available[item.ProductName] = item.IsAvailable
	}
	assert.Equal(t, map[string]bool{"Mug": true, "Lamp": false}, available)

	empty, err := svc.GetWishlist(ctx, other.ID, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestRemoveItem(t *testing.T) {
	svc, _, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)

	_, err := svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, buyer.ID, p.ID))
	err = svc.RemoveItem(ctx, buyer.ID, p.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestMoveToCart_MergesWithExistingLine(t *testing.T) {
	svc, carts, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)

	_, err := carts.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)

	view, err := svc.MoveToCart(ctx, buyer.ID, p.ID, &wishlist.MoveToCartRequest{Quantity: 3})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)

	page, err := svc.GetWishlist(ctx, buyer.ID, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestMoveToCart_Rejections(t *testing.T) {
	svc, carts, db := newService(t)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 2)

	_, err := svc.MoveToCart(ctx, buyer.ID, p.ID, &wishlist.MoveToCartRequest{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "err = %v", err)

	_, err = svc.AddItem(ctx, buyer.ID, &wishlist.AddItemRequest{ProductID: p.ID})
	require.NoError(t, err)
	_, err = svc.MoveToCart(ctx, buyer.ID, p.ID, &wishlist.MoveToCartRequest{Quantity: 3})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest), "err = %v", err)

	view, err := carts.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	page, err := svc.GetWishlist(ctx, buyer.ID, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
