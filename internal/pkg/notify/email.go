package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/pkg/email"
)

// Mailer is the subset of the email service used for order notifications
type Mailer interface {
	SendOrderConfirmationEmail(ctx context.Context, data email.OrderConfirmationData) error
	SendOrderStatusUpdateEmail(ctx context.Context, data email.OrderStatusUpdateData) error
}

// EmailNotifier sends order notifications as email
type EmailNotifier struct {
	mailer Mailer
	log    logrus.FieldLogger
}

func NewEmailNotifier(mailer Mailer, log logrus.FieldLogger) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, log: log}
}

func (n *EmailNotifier) OrderPlaced(ctx context.Context, msg OrderPlaced) error {
	data := email.OrderConfirmationData{
		EmailTemplateData: email.EmailTemplateData{UserName: msg.CustomerName, UserEmail: msg.CustomerEmail},
		OrderNumber:       msg.OrderNumber,
		OrderDate:         msg.PlacedAt.Format("January 2, 2006"),
		OrderTotal:        msg.Total,
		ShippingAddress:   msg.ShippingAddress,
	}
	for _, l := range msg.Lines {
		data.Items = append(data.Items, email.OrderItem{Name: l.Name, SKU: l.SKU, Quantity: l.Quantity, Total: l.Total})
	}

	if err := n.mailer.SendOrderConfirmationEmail(ctx, data); err != nil {
		return err
	}
	n.log.WithFields(logrus.Fields{
		"type":         TypeOrderConfirmation,
		"order_number": msg.OrderNumber,
	}).Debug("Order confirmation email sent")
	return nil
}

func (n *EmailNotifier) OrderStatusChanged(ctx context.Context, msg OrderStatusChanged) error {
	err := n.mailer.SendOrderStatusUpdateEmail(ctx, email.OrderStatusUpdateData{
		EmailTemplateData: email.EmailTemplateData{UserEmail: msg.CustomerEmail},
		OrderNumber:       msg.OrderNumber,
		Status:            msg.To,
		Comment:           msg.Comment,
	})
	if err != nil {
		return err
	}
	n.log.WithFields(logrus.Fields{
		"type":         TypeOrderStatusUpdate,
		"order_number": msg.OrderNumber,
		"status":       msg.To,
	}).Debug("Order status email sent")
	return nil
}
