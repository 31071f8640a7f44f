// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/your-org/marketplace-core/internal/config"
)

var templates = map[string]*template.Template{
	"order_confirmation":  template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate)),
	"order_status_update": template.Must(template.New("order_status_update").Parse(orderStatusUpdateTemplate)),
}

// EmailService renders and delivers transactional email
type EmailService struct {
	config config.EmailConfig
	send   func(email *Email) error
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig) *EmailService {
	s := &EmailService{config: cfg}
	s.send = s.sendSMTPEmail
	return s
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email %q has no recipients", email.Subject)
	}
	return s.send(email)
}

// SendOrderConfirmationEmail sends order confirmation email
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, data OrderConfirmationData) error {
	data.EmailTemplateData = GetBaseTemplateData(s.config.FromName, s.config.BaseURL, data.UserName, data.UserEmail)
	data.OrderURL = fmt.Sprintf("%s/orders/%s", s.config.BaseURL, data.OrderNumber)

	htmlContent, err := s.renderTemplate("order_confirmation", data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order Confirmation - %s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

// SendOrderStatusUpdateEmail sends order status update email
func (s *EmailService) SendOrderStatusUpdateEmail(ctx context.Context, data OrderStatusUpdateData) error {
	data.EmailTemplateData = GetBaseTemplateData(s.config.FromName, s.config.BaseURL, data.UserName, data.UserEmail)
	data.OrderURL = fmt.Sprintf("%s/orders/%s", s.config.BaseURL, data.OrderNumber)
	if data.StatusMessage == "" {
		data.StatusMessage = statusMessage(data.Status)
	}

	htmlContent, err := s.renderTemplate("order_status_update", data)
	if err != nil {
		return fmt.Errorf("failed to render order status template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order Update - %s", data.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderStatusUpdate,
	})
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statusMessage(status string) string {
	switch status {
	case "PROCESSING":
		return "Your order is being prepared."
	case "SHIPPED":
		return "Your order is on its way."
	case "DELIVERED":
		return "Your order has been delivered."
	case "CANCELLED":
		return "Your order has been cancelled."
	}
	return "Your order status has changed."
}

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Thank you for your order{{if .UserName}}, {{.UserName}}{{end}}!</h2>
    <p>Order <strong>{{.OrderNumber}}</strong> was placed on {{.OrderDate}}.</p>
    <table style="width: 100%; border-collapse: collapse;">
        <tr><th align="left">Item</th><th align="left">SKU</th><th align="right">Qty</th><th align="right">Total</th></tr>
        {{range .Items}}
        <tr><td>{{.Name}}</td><td>{{.SKU}}</td><td align="right">{{.Quantity}}</td><td align="right">${{.Total}}</td></tr>
        {{end}}
    </table>
    <p><strong>Order total: ${{.OrderTotal}}</strong></p>
    {{if .ShippingAddress}}<p>Shipping to: {{.ShippingAddress}}</p>{{end}}
    <p><a href="{{.OrderURL}}">View your order</a></p>
    <p style="color: #666; font-size: 12px;">&copy; {{.Year}} {{.SiteName}}</p>
</body>
</html>
`

const orderStatusUpdateTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Order {{.OrderNumber}} is now {{.Status}}</h2>
    <p>{{.StatusMessage}}</p>
    {{if .Comment}}<p>{{.Comment}}</p>{{end}}
    <p><a href="{{.OrderURL}}">View your order</a></p>
    <p style="color: #666; font-size: 12px;">&copy; {{.Year}} {{.SiteName}}</p>
</body>
</html>
`
