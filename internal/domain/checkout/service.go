// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/metrics"
	"github.com/your-org/marketplace-core/internal/pkg/notify"
	"gorm.io/gorm"
)

const op = "checkout"

// Service turns a customer's cart into an order
type Service struct {
	db       *gorm.DB
	notifier notify.Notifier
	metrics  *metrics.Business
	log      logrus.FieldLogger
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, notifier notify.Notifier, m *metrics.Business, log logrus.FieldLogger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		db:       db,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// line is a cart line joined with its locked product
type line struct {
	item    cart.CartItem
	product *product.Product
}

// Checkout converts the customer's cart into a PENDING order. Stock is decremented,
// the order is written and the cart is emptied in one transaction: either all of it
// happens or none of it does.
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID) (*order.Order, error) {
	start := time.Now()

	var (
		placed   *order.Order
		customer *user.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if customer, err = user.FindByID(tx, customerID); err != nil {
			return err
		}

		c, err := cart.LockForCheckout(tx, customerID)
		if err != nil {
			return apperror.Internal(op, err)
		}
		if c == nil || c.IsEmpty() {
			return apperror.BadRequest(op, "cart is empty")
		}

		lines, err := lockLines(tx, c.Items)
		if err != nil {
			return err
		}
		if err := validate(lines); err != nil {
			return err
		}

		o := &order.Order{
			CustomerID:      customerID,
			Status:          order.OrderStatusPending,
			ShippingAddress: customer.ShippingAddress,
		}
		for _, l := range lines {
			ok, err := product.DecrementStock(tx, l.product.ID, l.item.Quantity)
			if err != nil {
				return apperror.Internal(op, err)
			}
			if !ok {
				return apperror.Conflict(op, "stock for product %s changed during checkout", l.product.Name)
			}
			o.AddItem(order.OrderItem{
				ProductID:   l.product.ID,
				SellerID:    l.product.SellerID,
				ProductName: l.product.Name,
				SKU:         l.product.SKU,
				Quantity:    l.item.Quantity,
				UnitPrice:   l.product.Price,
			})
		}

		o.AddStatusHistory("", order.OrderStatusPending, "Order created", customerID)
		if err := tx.Create(o).Error; err != nil {
			return apperror.Internal(op, err)
		}

		if err := cart.ClearItems(tx, c.ID); err != nil {
			return apperror.Internal(op, err)
		}

		if placed, err = order.Load(tx, o.ID); err != nil {
			return apperror.Internal(op, err)
		}
		return nil
	})

	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.metrics.RecordCheckout(outcome(err), elapsed)
		s.log.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"kind":        apperror.KindOf(err),
		}).Warn("Checkout failed")
		return nil, err
	}

	units := 0
	for _, item := range placed.Items {
		units += item.Quantity
	}
	total, _ := placed.TotalAmount.Float64()
	s.metrics.RecordCheckout(metrics.OutcomeCompleted, elapsed)
	s.metrics.RecordOrder(total, len(placed.Items))
	s.metrics.RecordStockDecrement(units)

	s.log.WithFields(logrus.Fields{
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
		"customer_id":  customerID,
		"total":        placed.TotalAmount.StringFixed(2),
		"lines":        len(placed.Items),
	}).Info("Order placed")

	if err := s.notifier.OrderPlaced(ctx, placedMessage(placed, customer)); err != nil {
		s.log.WithError(err).WithField("order_id", placed.ID).Warn("Failed to send order confirmation")
	}
	return placed, nil
}

// lockLines locks every product in ascending id order so concurrent checkouts over
// overlapping products acquire their locks in the same sequence.
func lockLines(tx *gorm.DB, items []cart.CartItem) ([]line, error) {
	sorted := make([]cart.CartItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	lines := make([]line, 0, len(sorted))
	for _, item := range sorted {
		p, err := product.LockForUpdate(tx, item.ProductID)
		if err != nil {
			return nil, apperror.FromDB(op, err, "Product", item.ProductID)
		}
		lines = append(lines, line{item: item, product: p})
	}
	return lines, nil
}

// validate collects every problem with the locked lines into one error
func validate(lines []line) error {
	var problems []string
	for _, l := range lines {
		switch {
		case !l.product.IsActive:
			problems = append(problems, fmt.Sprintf("product %s is not available", l.product.Name))
		case !l.product.HasStock(l.item.Quantity):
			problems = append(problems, fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
				l.product.Name, l.item.Quantity, l.product.Stock))
		}
	}
	if len(problems) > 0 {
		return apperror.BadRequest(op, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func outcome(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindConflict:
		return metrics.OutcomeConflict
	case apperror.KindBadRequest, apperror.KindNotFound:
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeFailed
	}
}

func placedMessage(o *order.Order, customer *user.User) notify.OrderPlaced {
	lines := make([]notify.OrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, notify.OrderLine{
			Name:     item.ProductName,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Total:    item.TotalPrice.StringFixed(2),
		})
	}
	return notify.OrderPlaced{
		OrderID:         o.ID.String(),
		OrderNumber:     o.OrderNumber,
		CustomerEmail:   customer.Email,
		CustomerName:    customer.FullName(),
		Total:           o.TotalAmount.StringFixed(2),
		ShippingAddress: o.ShippingAddress,
		Lines:           lines,
		PlacedAt:        o.CreatedAt,
	}
}
