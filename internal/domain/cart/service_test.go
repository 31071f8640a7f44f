package cart_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/testutil/testdb"
	"gorm.io/gorm"
)

func newService(t *testing.T, guests cart.GuestCartStore) (*cart.Service, *gorm.DB) {
	t.Helper()
	db := testdb.New(t)
	log, _ := logtest.NewNullLogger()
	return cart.NewService(db, guests, nil, log), db
}

func TestAddItem_MergesLinesForSameProduct(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Mug", "12.50", 10)

	_, err := svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 5, view.TotalQuantity)
	assert.Equal(t, "62.50", view.Subtotal.StringFixed(2))
	assert.Equal(t, "62.50", view.Items[0].LineTotal.StringFixed(2))

	var lines int64
	require.NoError(t, db.Model(&cart.CartItem{}).Count(&lines).Error)
	assert.EqualValues(t, 1, lines)
}

func TestAddItem_MergedQuantityMustFitStock(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Lamp", "40.00", 4)

	_, err := svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 2})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Contains(t, apperror.Message(err), "requested 5, available 4")

	view, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
}

func TestAddItem_Rejections(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	active := testdb.CreateProduct(t, db, seller.ID, "Pen", "1.00", 5)
	inactive := testdb.CreateProduct(t, db, seller.ID, "Old Pen", "1.00", 5)
	testdb.Deactivate(t, db, inactive.ID)

	tests := []struct {
		name string
		req  cart.AddItemRequest
		kind apperror.Kind
	}{
		{"zero quantity", cart.AddItemRequest{ProductID: active.ID, Quantity: 0}, apperror.KindBadRequest},
		{"unknown product", cart.AddItemRequest{ProductID: uuid.New(), Quantity: 1}, apperror.KindNotFound},
		{"inactive product", cart.AddItemRequest{ProductID: inactive.ID, Quantity: 1}, apperror.KindBadRequest},
		{"over stock", cart.AddItemRequest{ProductID: active.ID, Quantity: 6}, apperror.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.AddItem(ctx, buyer.ID, &req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestGetCart_CreatesCartOnce(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")

	first, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	second, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Items)
	assert.True(t, second.Subtotal.IsZero())

	var carts int64
	require.NoError(t, db.Model(&cart.Cart{}).Where("customer_id = ?", buyer.ID).Count(&carts).Error)
	assert.EqualValues(t, 1, carts)
}

func TestUpdateAndRemoveItem_RequireOwnership(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	owner := testdb.CreateCustomer(t, db, "owner@example.com")
	other := testdb.CreateCustomer(t, db, "other@example.com")
	p := testdb.CreateProduct(t, db, seller.ID, "Book", "20.00", 10)

	view, err := svc.AddItem(ctx, owner.ID, &cart.AddItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := view.Items[0].ID

	_, err = svc.UpdateItem(ctx, other.ID, itemID, 2)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = svc.RemoveItem(ctx, other.ID, itemID)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = svc.UpdateItem(ctx, owner.ID, uuid.New(), 2)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	view, err = svc.UpdateItem(ctx, owner.ID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)
	assert.Equal(t, "80.00", view.Subtotal.StringFixed(2))

	_, err = svc.UpdateItem(ctx, owner.ID, itemID, 11)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	view, err = svc.RemoveItem(ctx, owner.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearCart(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()
	seller := testdb.CreateUser(t, db, "seller@example.com", "SELLER")
	buyer := testdb.CreateCustomer(t, db, "buyer@example.com")
	a := testdb.CreateProduct(t, db, seller.ID, "A", "1.00", 5)
	b := testdb.CreateProduct(t, db, seller.ID, "B", "2.00", 5)

	_, err := svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: a.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, buyer.ID, &cart.AddItemRequest{ProductID: b.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, buyer.ID))

	view, err := svc.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 5, testdb.Stock(t, db, a.ID))
}
