package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusShipped, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" shipped ")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusShipped, s)

	_, ok = ParseStatus("REFUNDED")
	assert.False(t, ok)

	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestGenerateOrderNumber(t *testing.T) {
	id := uuid.MustParse("3f2a9c1d-0000-4000-8000-000000000000")
	at := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "ORD-20260309-3F2A9C1D", GenerateOrderNumber(id, at))
}

func TestOrder_AddItemKeepsTotal(t *testing.T) {
	var o Order
	p1, p2 := uuid.New(), uuid.New()
	o.AddItem(OrderItem{ProductID: p1, Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")})
	o.AddItem(OrderItem{ProductID: p2, Quantity: 1, UnitPrice: decimal.RequireFromString("0.03")})

	assert.Equal(t, "59.97", o.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "60.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, []uuid.UUID{p1, p2}, o.ProductIDs())
}

func TestOrder_AddStatusHistory(t *testing.T) {
	o := Order{ID: uuid.New()}
	admin := uuid.New()

	entry := o.AddStatusHistory(OrderStatusPending, OrderStatusProcessing, "picked", admin)
	require.Len(t, o.StatusHistory, 1)
	assert.Same(t, &o.StatusHistory[0], entry)
	assert.Equal(t, o.ID, entry.OrderID)
	assert.Equal(t, OrderStatusPending, entry.FromStatus)
	assert.Equal(t, OrderStatusProcessing, entry.ToStatus)
	assert.Equal(t, admin, entry.ChangedBy)
	assert.False(t, entry.CreatedAt.IsZero())
}
