// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles seller-side product persistence
type Service struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewService creates a new product service
func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log}
}

// ProductRequest is the body for create and update
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// ProductPage is a page of products
type ProductPage struct {
	Products   []Product             `json:"products"`
	Pagination pagination.Pagination `json:"pagination"`
}

func (r *ProductRequest) validate(op string) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperror.BadRequest(op, "product name is required")
	}
	if strings.TrimSpace(r.SKU) == "" {
		return apperror.BadRequest(op, "product sku is required")
	}
	if !r.Price.IsPositive() {
		return apperror.BadRequest(op, "price must be greater than zero")
	}
	if r.Stock < 0 {
		return apperror.BadRequest(op, "stock cannot be negative")
	}
	return nil
}

// GetProduct loads a product by id
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error; err != nil {
		return nil, apperror.FromDB("product.get", err, "Product", id)
	}
	return &p, nil
}

// CreateProduct lists a new product for the calling seller
func (s *Service) CreateProduct(ctx context.Context, principal auth.Principal, req *ProductRequest) (*Product, error) {
	const op = "product.create"

	if !principal.HasRole(auth.RoleSeller) {
		return nil, apperror.Unauthorized(op, "only sellers can create products")
	}
	if err := req.validate(op); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureCategory(db, op, req.CategoryID); err != nil {
		return nil, err
	}

	p := Product{
		SellerID:    principal.ID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		SKU:         strings.TrimSpace(req.SKU),
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		IsActive:    true,
		AvgRating:   decimal.Zero,
	}
	if err := db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.BadRequest(op, "sku %q is already in use", p.SKU)
		}
		return nil, apperror.Internal(op, err)
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "seller_id": p.SellerID}).Info("Product created")
	return &p, nil
}

// UpdateProduct changes a product's listing. Allowed for admins and the owning seller.
func (s *Service) UpdateProduct(ctx context.Context, principal auth.Principal, id uuid.UUID, req *ProductRequest) (*Product, error) {
	const op = "product.update"

	if err := req.validate(op); err != nil {
		return nil, err
	}

	var updated *Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := LockForUpdate(tx, id)
		if err != nil {
			return apperror.FromDB(op, err, "Product", id)
		}
		if !principal.IsAdmin() && !p.IsOwnedBy(principal.ID) {
			return apperror.Unauthorized(op, "you can only update your own products")
		}
		if err := s.ensureCategory(tx, op, req.CategoryID); err != nil {
			return err
		}

		p.Name = strings.TrimSpace(req.Name)
		p.Description = strings.TrimSpace(req.Description)
		p.SKU = strings.TrimSpace(req.SKU)
		p.Price = req.Price.Round(2)
		p.Stock = req.Stock
		p.CategoryID = req.CategoryID

		if err := tx.Model(p).Select("Name", "Description", "SKU", "Price", "Stock", "CategoryID").Updates(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.BadRequest(op, "sku %q is already in use", p.SKU)
			}
			return apperror.Internal(op, err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("product_id", id).Info("Product updated")
	return updated, nil
}

// DeactivateProduct hides a product from carts and checkout without deleting it
func (s *Service) DeactivateProduct(ctx context.Context, principal auth.Principal, id uuid.UUID) error {
	const op = "product.deactivate"

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := LockForUpdate(tx, id)
		if err != nil {
			return apperror.FromDB(op, err, "Product", id)
		}
		if !principal.IsAdmin() && !p.IsOwnedBy(principal.ID) {
			return apperror.Unauthorized(op, "you can only delete your own products")
		}
		if err := tx.Model(p).Update("is_active", false).Error; err != nil {
			return apperror.Internal(op, err)
		}
		s.log.WithField("product_id", id).Info("Product deactivated")
		return nil
	})
}

// ListSellerProducts pages through a seller's listings, newest first
func (s *Service) ListSellerProducts(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ProductPage, error) {
	const op = "product.list_seller"
	params = params.Normalize()

	query := s.db.WithContext(ctx).Model(&Product{}).Where("seller_id = ?", sellerID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	var products []Product
	if err := query.Order("created_at DESC").Offset(params.Offset()).Limit(params.Limit).Find(&products).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	return &ProductPage{Products: products, Pagination: pagination.New(params, total)}, nil
}

func (s *Service) ensureCategory(db *gorm.DB, op string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	var count int64
	if err := db.Model(&Category{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return apperror.Internal(op, err)
	}
	if count == 0 {
		return apperror.NotFound(op, "Category", *id)
	}
	return nil
}
