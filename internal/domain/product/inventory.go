// internal/domain/product/inventory.go
package product

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockForUpdate loads a product and holds a row lock on it until tx ends.
// Callers locking several products must do so in ascending id order.
func LockForUpdate(tx *gorm.DB, id uuid.UUID) (*Product, error) {
	var p Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock removes qty units only while at least qty remain.
// It returns false when the conditional update matched no row.
func DecrementStock(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("decrement quantity must be positive, got %d", qty)
	}
	res := tx.Model(&Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// CurrentStock reads the stock counter without locking.
func CurrentStock(db *gorm.DB, id uuid.UUID) (int, error) {
	var stock int
	err := db.Model(&Product{}).Where("id = ?", id).Select("stock").Row().Scan(&stock)
	return stock, err
}
