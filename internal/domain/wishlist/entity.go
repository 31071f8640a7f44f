// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"gorm.io/gorm"
)

// WishlistItem is a product a customer saved for later. A customer saves a product at most once.
type WishlistItem struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_customer_product" json:"customer_id"`
	ProductID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_customer_product;index" json:"product_id"`
	AddedAt    time.Time        `gorm:"not null" json:"added_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Product    *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.AddedAt.IsZero() {
		w.AddedAt = time.Now().UTC()
	}
	return nil
}
