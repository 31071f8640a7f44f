// internal/domain/review/entity.go
package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a product. A customer reviews a product at most once.
type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_customer;index" json:"product_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_customer" json:"customer_id"`
	Rating     int       `gorm:"not null;check:chk_reviews_rating_range,rating BETWEEN 1 AND 5" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
