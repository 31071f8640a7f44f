// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a listing owned by a seller. It owns its stock counter and rating fields.
type Product struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SellerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name         string          `gorm:"not null;size:255" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	SKU          string          `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0" json:"stock"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	AvgRating    decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"avg_rating"`
	ReviewsCount int             `gorm:"not null;default:0" json:"reviews_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// Category groups products
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether sellerID listed this product
func (p *Product) IsOwnedBy(sellerID uuid.UUID) bool {
	return p.SellerID == sellerID
}

// HasStock reports whether qty units are currently available
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}
