// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"gorm.io/gorm"
)

// Cart is a customer's single staging area for purchases
type Cart struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"customer_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem is one product line in a cart. A cart holds at most one line per product.
type CartItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"`
	Quantity  int              `gorm:"not null;check:chk_cart_items_quantity_positive,quantity >= 1" json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Product   *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the line for productID, if any
func (c *Cart) FindItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// GuestCart is an anonymous session's cart, stored in Redis
type GuestCart struct {
	SessionID string      `json:"session_id"`
	Items     []GuestItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// GuestItem is a guest cart line
type GuestItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// FindItem returns the index of productID's line, or -1
func (g *GuestCart) FindItem(productID uuid.UUID) int {
	for i := range g.Items {
		if g.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
