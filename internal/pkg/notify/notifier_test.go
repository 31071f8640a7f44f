package notify

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/pkg/email"
)

func TestLogNotifier_OrderPlaced(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	n := NewLogNotifier(log)

	err := n.OrderPlaced(context.Background(), OrderPlaced{
		OrderID:       "id-1",
		OrderNumber:   "ORD-20260101-ABCDEF12",
		CustomerEmail: "buyer@example.com",
		Total:         "30.00",
		Lines:         []OrderLine{{Name: "Mug", Quantity: 2, Total: "30.00"}},
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Order Confirmation - ORD-20260101-ABCDEF12", entry.Message)
	assert.Equal(t, "buyer@example.com", entry.Data["to"])
	assert.Equal(t, 1, entry.Data["lines"])
}

func TestLogNotifier_StatusChanged(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	n := NewLogNotifier(log)

	err := n.OrderStatusChanged(context.Background(), OrderStatusChanged{
		OrderNumber:   "ORD-1",
		CustomerEmail: "buyer@example.com",
		From:          "PENDING",
		To:            "PROCESSING",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROCESSING", hook.LastEntry().Data["status"])
}

func TestLogNotifier_RequiresRecipient(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	n := NewLogNotifier(log)

	assert.Error(t, n.OrderPlaced(context.Background(), OrderPlaced{OrderNumber: "ORD-1"}))
	assert.Error(t, n.OrderStatusChanged(context.Background(), OrderStatusChanged{OrderNumber: "ORD-1"}))
	assert.Empty(t, hook.AllEntries())
}

type fakeMailer struct {
	confirmations []email.OrderConfirmationData
	updates       []email.OrderStatusUpdateData
}

func (m *fakeMailer) SendOrderConfirmationEmail(_ context.Context, d email.OrderConfirmationData) error {
	m.confirmations = append(m.confirmations, d)
	return nil
}

func (m *fakeMailer) SendOrderStatusUpdateEmail(_ context.Context, d email.OrderStatusUpdateData) error {
	m.updates = append(m.updates, d)
	return nil
}

func TestEmailNotifier(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	mailer := &fakeMailer{}
	n := NewEmailNotifier(mailer, log)

	require.NoError(t, n.OrderPlaced(context.Background(), OrderPlaced{
		OrderNumber:   "ORD-1",
		CustomerEmail: "buyer@example.com",
		CustomerName:  "Ada Lovelace",
		Total:         "30.00",
		PlacedAt:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Lines:         []OrderLine{{Name: "Mug", SKU: "MUG-1", Quantity: 2, Total: "30.00"}},
	}))
	require.Len(t, mailer.confirmations, 1)
	got := mailer.confirmations[0]
	assert.Equal(t, "buyer@example.com", got.UserEmail)
	assert.Equal(t, "March 9, 2026", got.OrderDate)
	assert.Equal(t, []email.OrderItem{{Name: "Mug", SKU: "MUG-1", Quantity: 2, Total: "30.00"}}, got.Items)

	require.NoError(t, n.OrderStatusChanged(context.Background(), OrderStatusChanged{
		OrderNumber:   "ORD-1",
		CustomerEmail: "buyer@example.com",
		To:            "SHIPPED",
		Comment:       "left the warehouse",
	}))
	require.Len(t, mailer.updates, 1)
	assert.Equal(t, "SHIPPED", mailer.updates[0].Status)
	assert.Equal(t, "left the warehouse", mailer.updates[0].Comment)
}
