// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles cart business logic
type Service struct {
	db      *gorm.DB
	guests  GuestCartStore
	metrics *metrics.Business
	log     logrus.FieldLogger
}

// NewService creates a new cart service. guests may be nil when guest carts are disabled.
func NewService(db *gorm.DB, guests GuestCartStore, m *metrics.Business, log logrus.FieldLogger) *Service {
	return &Service{
		db:      db,
		guests:  guests,
		metrics: m,
		log:     log,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ItemView is a cart line priced at the current catalog price
type ItemView struct {
	ID          uuid.UUID       `json:"id,omitempty"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
	InStock     bool            `json:"in_stock"`
	IsActive    bool            `json:"is_active"`
}

// CartView is the cart snapshot returned by every cart operation
type CartView struct {
	ID            uuid.UUID       `json:"id,omitempty"`
	CustomerID    uuid.UUID       `json:"customer_id,omitempty"`
	SessionID     string          `json:"session_id,omitempty"`
	Items         []ItemView      `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GetCart returns the customer's cart, creating it on first access
func (s *Service) GetCart(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	const op = "cart.get"

	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := findOrCreate(tx, customerID, false)
		if err != nil {
			return apperror.Internal(op, err)
		}
		view, err = s.loadView(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AddItem adds qty of a product, merging into an existing line for the same product
func (s *Service) AddItem(ctx context.Context, customerID uuid.UUID, req *AddItemRequest) (*CartView, error) {
	const op = "cart.add_item"

	if req.Quantity < 1 {
		return nil, apperror.BadRequest(op, "quantity must be at least 1")
	}

	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := findOrCreate(tx, customerID, true)
		if err != nil {
			return apperror.Internal(op, err)
		}
		if err := s.addLine(tx, op, c, req.ProductID, req.Quantity); err != nil {
			return err
		}
		view, err = s.loadView(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartAdd()
	return view, nil
}

// UpdateItem sets a line's quantity
func (s *Service) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, qty int) (*CartView, error) {
	const op = "cart.update_item"

	if qty < 1 {
		return nil, apperror.BadRequest(op, "quantity must be at least 1")
	}

	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, item, err := ownedItem(tx, op, customerID, itemID)
		if err != nil {
			return err
		}

		p, err := activeProduct(tx, op, item.ProductID)
		if err != nil {
			return err
		}
		if !p.HasStock(qty) {
			return apperror.BadRequest(op, "insufficient stock for product %s: requested %d, available %d", p.Name, qty, p.Stock)
		}

		if err := tx.Model(item).Update("quantity", qty).Error; err != nil {
			return apperror.Internal(op, err)
		}
		view, err = s.loadView(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// RemoveItem deletes one line from the caller's cart
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*CartView, error) {
	const op = "cart.remove_item"

	var view *CartView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, item, err := ownedItem(tx, op, customerID, itemID)
		if err != nil {
			return err
		}
		if err := tx.Delete(item).Error; err != nil {
			return apperror.Internal(op, err)
		}
		view, err = s.loadView(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ClearCart removes every line from the customer's cart
func (s *Service) ClearCart(ctx context.Context, customerID uuid.UUID) error {
	const op = "cart.clear"

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := findOrCreate(tx, customerID, true)
		if err != nil {
			return apperror.Internal(op, err)
		}
		if err := ClearItems(tx, c.ID); err != nil {
			return apperror.Internal(op, err)
		}
		return nil
	})
}

// LockForCheckout loads the customer's cart with its lines and holds a row lock on
// the cart until tx ends. Returns nil without error when the customer has no cart.
func LockForCheckout(tx *gorm.DB, customerID uuid.UUID) (*Cart, error) {
	var c Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Where("cart_id = ?", c.ID).Order("created_at ASC").Find(&c.Items).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ClearItems deletes all lines of a cart
func ClearItems(tx *gorm.DB, cartID uuid.UUID) error {
	return tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error
}

// addLine applies the merge law: one line per product, quantities summed
func (s *Service) addLine(tx *gorm.DB, op string, c *Cart, productID uuid.UUID, qty int) error {
	p, err := activeProduct(tx, op, productID)
	if err != nil {
		return err
	}

	var existing CartItem
	err = tx.Where("cart_id = ? AND product_id = ?", c.ID, productID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !p.HasStock(qty) {
			return apperror.BadRequest(op, "insufficient stock for product %s: requested %d, available %d", p.Name, qty, p.Stock)
		}
		item := CartItem{CartID: c.ID, ProductID: productID, Quantity: qty}
		if err := tx.Create(&item).Error; err != nil {
			return apperror.Internal(op, err)
		}
	case err != nil:
		return apperror.Internal(op, err)
	default:
		merged := existing.Quantity + qty
		if !p.HasStock(merged) {
			return apperror.BadRequest(op, "insufficient stock for product %s: requested %d, available %d", p.Name, merged, p.Stock)
		}
		if err := tx.Model(&existing).Update("quantity", merged).Error; err != nil {
			return apperror.Internal(op, err)
		}
	}
	return nil
}

func (s *Service) loadView(tx *gorm.DB, c *Cart) (*CartView, error) {
	var items []CartItem
	if err := tx.Preload("Product").Where("cart_id = ?", c.ID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, apperror.Internal("cart.view", err)
	}

	view := &CartView{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Items:      make([]ItemView, 0, len(items)),
		Subtotal:   decimal.Zero,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range items {
		line := itemView(item.ProductID, item.Quantity, item.Product)
		line.ID = item.ID
		view.add(line)
	}
	return view, nil
}

func (v *CartView) add(line ItemView) {
	v.Items = append(v.Items, line)
	v.TotalQuantity += line.Quantity
	v.Subtotal = v.Subtotal.Add(line.LineTotal)
}

func itemView(productID uuid.UUID, qty int, p *product.Product) ItemView {
	line := ItemView{ProductID: productID, Quantity: qty, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}
	if p == nil {
		return line
	}
	line.ProductName = p.Name
	line.SKU = p.SKU
	line.UnitPrice = p.Price
	line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(qty)))
	line.InStock = p.HasStock(qty)
	line.IsActive = p.IsActive
	return line
}

// findOrCreate returns the customer's cart. Concurrent first access is resolved by the
// unique customer_id index: the losing insert does nothing and both callers re-read.
func findOrCreate(tx *gorm.DB, customerID uuid.UUID, lock bool) (*Cart, error) {
	query := func() (*Cart, error) {
		q := tx
		if lock {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var c Cart
		err := q.Where("customer_id = ?", customerID).First(&c).Error
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	c, err := query()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := Cart{CustomerID: customerID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return query()
}

// ownedItem loads a cart line and checks it belongs to the customer's cart
func ownedItem(tx *gorm.DB, op string, customerID, itemID uuid.UUID) (*Cart, *CartItem, error) {
	var item CartItem
	if err := tx.Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, nil, apperror.FromDB(op, err, "Cart item", itemID)
	}

	var c Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", item.CartID).First(&c).Error
	if err != nil {
		return nil, nil, apperror.FromDB(op, err, "Cart", item.CartID)
	}
	if c.CustomerID != customerID {
		return nil, nil, apperror.BadRequest(op, "cart item does not belong to this customer")
	}
	return &c, &item, nil
}

func activeProduct(tx *gorm.DB, op string, productID uuid.UUID) (*product.Product, error) {
	var p product.Product
	if err := tx.Where("id = ?", productID).First(&p).Error; err != nil {
		return nil, apperror.FromDB(op, err, "Product", productID)
	}
	if !p.IsActive {
		return nil, apperror.BadRequest(op, "product %s is not available", p.Name)
	}
	return &p, nil
}
