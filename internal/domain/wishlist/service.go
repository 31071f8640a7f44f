// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	log         logrus.FieldLogger
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cartService *cart.Service, log logrus.FieldLogger) *Service {
	return &Service{
		db:          db,
		cartService: cartService,
		log:         log,
	}
}

// AddItemRequest represents add to wishlist request
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// MoveToCartRequest carries the quantity to put in the cart. Zero means one.
type MoveToCartRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1"`
}

// ItemView is a wishlist entry with the product's current catalog state
type ItemView struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	IsAvailable  bool            `json:"is_available"`
	AddedAt      time.Time       `json:"added_at"`
}

// WishlistPage is a page of wishlist entries, newest first
type WishlistPage struct {
	Items      []ItemView            `json:"items"`
	Pagination pagination.Pagination `json:"pagination"`
}

// GetWishlist returns a page of the customer's wishlist
func (s *Service) GetWishlist(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*WishlistPage, error) {
	const op = "wishlist.get"
	params = params.Normalize()

	query := s.db.WithContext(ctx).Model(&WishlistItem{}).Where("customer_id = ?", customerID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	var items []WishlistItem
	err := query.Preload("Product").
		Order("added_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&items).Error
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	page := &WishlistPage{
		Items:      make([]ItemView, 0, len(items)),
		Pagination: pagination.New(params, total),
	}
	for _, item := range items {
		page.Items = append(page.Items, itemView(item))
	}
	return page, nil
}

// AddItem saves a product to the wishlist. Saving a product twice leaves one entry.
func (s *Service) AddItem(ctx context.Context, customerID uuid.UUID, req *AddItemRequest) (*ItemView, error) {
	const op = "wishlist.add_item"

	var saved WishlistItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.Where("id = ?", req.ProductID).First(&p).Error; err != nil {
			return apperror.FromDB(op, err, "Product", req.ProductID)
		}
		if !p.IsActive {
			return apperror.BadRequest(op, "product %s is not available", p.Name)
		}

		item := WishlistItem{CustomerID: customerID, ProductID: p.ID}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&item).Error
		if err != nil {
			return apperror.Internal(op, err)
		}

		if err := tx.Preload("Product").
			Where("customer_id = ? AND product_id = ?", customerID, p.ID).
			First(&saved).Error; err != nil {
			return apperror.Internal(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := itemView(saved)
	return &view, nil
}

// RemoveItem deletes a product from the wishlist
func (s *Service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) error {
	const op = "wishlist.remove_item"

	result := s.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&WishlistItem{})
	if result.Error != nil {
		return apperror.Internal(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(op, "Wishlist item", productID)
	}
	return nil
}

// MoveToCart adds a saved product to the cart, merging with any existing line for it,
// and then drops it from the wishlist. A failed cart add leaves the wishlist unchanged.
func (s *Service) MoveToCart(ctx context.Context, customerID, productID uuid.UUID, req *MoveToCartRequest) (*cart.CartView, error) {
	const op = "wishlist.move_to_cart"

	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&count).Error
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	if count == 0 {
		return nil, apperror.NotFound(op, "Wishlist item", productID)
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	view, err := s.cartService.AddItem(ctx, customerID, &cart.AddItemRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		return nil, err
	}

	if err := s.RemoveItem(ctx, customerID, productID); err != nil && !apperror.Is(err, apperror.KindNotFound) {
		s.log.WithError(err).WithFields(logrus.Fields{
			"customer_id": customerID,
			"product_id":  productID,
		}).Warn("Moved item to cart but could not remove it from the wishlist")
	}
	return view, nil
}

func itemView(item WishlistItem) ItemView {
	view := ItemView{
		ID:           item.ID,
		ProductID:    item.ProductID,
		CurrentPrice: decimal.Zero,
		AddedAt:      item.AddedAt,
	}
	if p := item.Product; p != nil {
		view.ProductName = p.Name
		view.SKU = p.SKU
		view.CurrentPrice = p.Price
		view.IsAvailable = p.IsActive && p.Stock > 0
	}
	return view
}
