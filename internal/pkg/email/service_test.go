package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/config"
)

func newTestService() (*EmailService, *[]*Email) {
	var sent []*Email
	s := NewEmailService(config.EmailConfig{
		Provider:  "smtp",
		FromName:  "Marketplace",
		FromEmail: "noreply@example.com",
		BaseURL:   "https://shop.example.com",
	})
	s.send = func(e *Email) error {
		sent = append(sent, e)
		return nil
	}
	return s, &sent
}

func TestSendOrderConfirmationEmail(t *testing.T) {
	s, sent := newTestService()

	err := s.SendOrderConfirmationEmail(context.Background(), OrderConfirmationData{
		EmailTemplateData: EmailTemplateData{UserName: "Ada", UserEmail: "ada@example.com"},
		OrderNumber:       "ORD-20260309-3F2A9C1D",
		OrderTotal:        "145.00",
		Items:             []OrderItem{{Name: "Kettle", SKU: "KT-1", Quantity: 2, Total: "60.00"}},
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	e := (*sent)[0]
	assert.Equal(t, []string{"ada@example.com"}, e.To)
	assert.Equal(t, "Order Confirmation - ORD-20260309-3F2A9C1D", e.Subject)
	assert.Equal(t, EmailTypeOrderConfirmation, e.Type)
	assert.Contains(t, e.HTMLContent, "Thank you for your order, Ada!")
	assert.Contains(t, e.HTMLContent, "$145.00")
	assert.Contains(t, e.HTMLContent, "https://shop.example.com/orders/ORD-20260309-3F2A9C1D")
}

func TestSendOrderStatusUpdateEmail(t *testing.T) {
	s, sent := newTestService()

	err := s.SendOrderStatusUpdateEmail(context.Background(), OrderStatusUpdateData{
		EmailTemplateData: EmailTemplateData{UserEmail: "ada@example.com"},
		OrderNumber:       "ORD-1",
		Status:            "SHIPPED",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].HTMLContent, "Your order is on its way.")

	err = s.SendOrderStatusUpdateEmail(context.Background(), OrderStatusUpdateData{OrderNumber: "ORD-2", Status: "SHIPPED"})
	assert.Error(t, err)
	assert.Len(t, *sent, 1)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Marketplace", "noreply@example.com", "help@example.com", &Email{
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Hello",
		HTMLContent: "<p>hi</p>",
	}))

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	require.True(t, found)
	assert.Equal(t, "<p>hi</p>", body)
	assert.True(t, strings.HasPrefix(head, "From: Marketplace <noreply@example.com>\r\n"))
	assert.Contains(t, head, "To: a@example.com, b@example.com")
	assert.Contains(t, head, "Reply-To: help@example.com")
}
