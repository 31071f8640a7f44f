// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/pkg/metrics"
	"github.com/your-org/marketplace-core/internal/pkg/notify"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles order business logic
type Service struct {
	db       *gorm.DB
	strict   bool
	notifier notify.Notifier
	metrics  *metrics.Business
	log      logrus.FieldLogger
}

// NewService creates a new order service. With strict set, status changes must follow
// the transition graph.
func NewService(db *gorm.DB, strict bool, notifier notify.Notifier, m *metrics.Business, log logrus.FieldLogger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		db:       db,
		strict:   strict,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// UpdateStatusRequest represents an administrative status change
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// ListFilter represents order list query parameters
type ListFilter struct {
	pagination.Params
	Status    string `form:"status"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

// OrderPage represents a page of orders
type OrderPage struct {
	Orders     []Order               `json:"orders"`
	Pagination pagination.Pagination `json:"pagination"`
}

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransition reports whether from -> to is an edge of the order lifecycle
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GetOrder returns an order visible to principal: its customer, a seller of one of its
// products, or an admin.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID, principal auth.Principal) (*Order, error) {
	const op = "order.get"

	db := s.db.WithContext(ctx)
	o, err := Load(db, id)
	if err != nil {
		return nil, apperror.FromDB(op, err, "Order", id)
	}

	visible, err := s.canView(db, o, principal)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	if !visible {
		return nil, apperror.Unauthorized(op, "you are not authorized to view this order")
	}
	return o, nil
}

// UpdateStatus moves an order to a new status. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *UpdateStatusRequest, principal auth.Principal) (*Order, error) {
	const op = "order.update_status"

	if !principal.IsAdmin() {
		return nil, apperror.Unauthorized(op, "only administrators can update order status")
	}
	to, ok := ParseStatus(req.Status)
	if !ok {
		return nil, apperror.BadRequest(op, "unknown order status %q", req.Status)
	}

	var (
		updated  *Order
		from     OrderStatus
		customer *user.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&o).Error
		if err != nil {
			return apperror.FromDB(op, err, "Order", id)
		}

		from = o.Status
		if s.strict && !CanTransition(from, to) {
			return apperror.BadRequest(op, "invalid status transition from %s to %s", from, to)
		}
		if from.IsTerminal() && from != to {
			s.log.WithFields(logrus.Fields{
				"order_id": o.ID,
				"from":     from,
				"to":       to,
			}).Warn("Reopening order in terminal status")
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": to}
		switch to {
		case OrderStatusProcessing:
			updates["processed_at"] = now
		case OrderStatusShipped:
			updates["shipped_at"] = now
		case OrderStatusDelivered:
			updates["delivered_at"] = now
		case OrderStatusCancelled:
			updates["cancelled_at"] = now
		}
		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return apperror.Internal(op, err)
		}

		if err := tx.Create(o.AddStatusHistory(from, to, req.Comment, principal.ID)).Error; err != nil {
			return apperror.Internal(op, err)
		}

		if updated, err = Load(tx, id); err != nil {
			return apperror.Internal(op, err)
		}
		if customer, err = user.FindByID(tx, o.CustomerID); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("Order customer not found")
			customer = nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(from), string(to))
	s.log.WithFields(logrus.Fields{
		"order_id":   updated.ID,
		"from":       from,
		"to":         to,
		"changed_by": principal.ID,
	}).Info("Order status updated")

	if customer != nil {
		msg := notify.OrderStatusChanged{
			OrderID:       updated.ID.String(),
			OrderNumber:   updated.OrderNumber,
			CustomerEmail: customer.Email,
			From:          string(from),
			To:            string(to),
			Comment:       req.Comment,
		}
		if err := s.notifier.OrderStatusChanged(ctx, msg); err != nil {
			s.log.WithError(err).WithField("order_id", updated.ID).Warn("Failed to send status notification")
		}
	}
	return updated, nil
}

// ListCustomerOrders returns the principal's own orders, newest first
func (s *Service) ListCustomerOrders(ctx context.Context, principal auth.Principal, page pagination.Params) (*OrderPage, error) {
	query := s.db.WithContext(ctx).Model(&Order{}).Where("customer_id = ?", principal.ID)
	return s.list(query, "order.list_customer", ListFilter{Params: page})
}

// ListSellerOrders returns orders that contain at least one product the seller owns
func (s *Service) ListSellerOrders(ctx context.Context, principal auth.Principal, page pagination.Params) (*OrderPage, error) {
	const op = "order.list_seller"

	if !principal.HasAnyRole(auth.RoleSeller, auth.RoleAdmin) {
		return nil, apperror.Unauthorized(op, "only sellers can list seller orders")
	}
	owned := s.db.WithContext(ctx).Table("order_items").
		Select("order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", principal.ID)
	query := s.db.WithContext(ctx).Model(&Order{}).Where("id IN (?)", owned)
	return s.list(query, op, ListFilter{Params: page})
}

// ListOrders returns all orders, optionally filtered by status. Admin only.
func (s *Service) ListOrders(ctx context.Context, filter ListFilter, principal auth.Principal) (*OrderPage, error) {
	const op = "order.list"

	if !principal.IsAdmin() {
		return nil, apperror.Unauthorized(op, "only administrators can list all orders")
	}
	query := s.db.WithContext(ctx).Model(&Order{})
	if filter.Status != "" {
		status, ok := ParseStatus(filter.Status)
		if !ok {
			return nil, apperror.BadRequest(op, "unknown order status %q", filter.Status)
		}
		query = query.Where("status = ?", status)
	}
	return s.list(query, op, filter)
}

// Load reads an order with its items and history
func Load(db *gorm.DB, id uuid.UUID) (*Order, error) {
	var o Order
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// HasDeliveredPurchase reports whether the customer has a delivered order containing the product
func HasDeliveredPurchase(db *gorm.DB, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			customerID, OrderStatusDelivered, productID).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) canView(db *gorm.DB, o *Order, principal auth.Principal) (bool, error) {
	if principal.IsAdmin() || o.CustomerID == principal.ID {
		return true, nil
	}
	if !principal.HasRole(auth.RoleSeller) {
		return false, nil
	}
	ids := o.ProductIDs()
	if len(ids) == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&product.Product{}).
		Where("id IN ? AND seller_id = ?", ids, principal.ID).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) list(query *gorm.DB, op string, filter ListFilter) (*OrderPage, error) {
	params := filter.Params.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	orders := []Order{}
	err := query.Session(&gorm.Session{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order(buildOrderClause(filter.SortBy, filter.SortOrder)).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	return &OrderPage{
		Orders:     orders,
		Pagination: pagination.New(params, total),
	}, nil
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
