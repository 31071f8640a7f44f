// Package notify delivers customer-facing order notifications.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Type identifies a notification template
type Type string

const (
	TypeOrderConfirmation Type = "order_confirmation"
	TypeOrderStatusUpdate Type = "order_status_update"
)

// OrderLine is an item as shown in a notification
type OrderLine struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

// OrderPlaced is sent after a successful checkout
type OrderPlaced struct {
	OrderID         string      `json:"order_id"`
	OrderNumber     string      `json:"order_number"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerName    string      `json:"customer_name"`
	Total           string      `json:"total"`
	ShippingAddress string      `json:"shipping_address"`
	Lines           []OrderLine `json:"lines"`
	PlacedAt        time.Time   `json:"placed_at"`
}

// OrderStatusChanged is sent after an administrative status change
type OrderStatusChanged struct {
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	CustomerEmail string `json:"customer_email"`
	From          string `json:"from"`
	To            string `json:"to"`
	Comment       string `json:"comment,omitempty"`
}

// Notifier delivers notifications. Implementations must not block on the caller's transaction.
type Notifier interface {
	OrderPlaced(ctx context.Context, n OrderPlaced) error
	OrderStatusChanged(ctx context.Context, n OrderStatusChanged) error
}

// LogNotifier writes notifications to the structured log instead of sending email.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) OrderPlaced(ctx context.Context, msg OrderPlaced) error {
	if msg.CustomerEmail == "" {
		return fmt.Errorf("order %s: no recipient", msg.OrderNumber)
	}
	n.log.WithFields(logrus.Fields{
		"type":         TypeOrderConfirmation,
		"to":           msg.CustomerEmail,
		"order_id":     msg.OrderID,
		"order_number": msg.OrderNumber,
		"total":        msg.Total,
		"lines":        len(msg.Lines),
	}).Info(Subject(TypeOrderConfirmation, msg.OrderNumber))
	return nil
}

func (n *LogNotifier) OrderStatusChanged(ctx context.Context, msg OrderStatusChanged) error {
	if msg.CustomerEmail == "" {
		return fmt.Errorf("order %s: no recipient", msg.OrderNumber)
	}
	n.log.WithFields(logrus.Fields{
		"type":         TypeOrderStatusUpdate,
		"to":           msg.CustomerEmail,
		"order_id":     msg.OrderID,
		"order_number": msg.OrderNumber,
		"from":         msg.From,
		"status":       msg.To,
	}).Info(Subject(TypeOrderStatusUpdate, msg.OrderNumber))
	return nil
}

// Subject renders the subject line for a notification type
func Subject(t Type, orderNumber string) string {
	switch t {
	case TypeOrderConfirmation:
		return fmt.Sprintf("Order Confirmation - %s", orderNumber)
	case TypeOrderStatusUpdate:
		return fmt.Sprintf("Order Update - %s", orderNumber)
	}
	return orderNumber
}

// Nop discards notifications
type Nop struct{}

func (Nop) OrderPlaced(context.Context, OrderPlaced) error               { return nil }
func (Nop) OrderStatusChanged(context.Context, OrderStatusChanged) error { return nil }
