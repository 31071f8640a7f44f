// Package testdb provides an in-memory database with the production schema for tests.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/infrastructure/database/postgres"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a private in-memory SQLite database and migrates every model.
// A single connection is used so concurrent transactions queue instead of failing
// with SQLITE_BUSY.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log, _ := logrustest.NewNullLogger()
	if err := postgres.NewMigration(db, log).RunAutoMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a profile with the given roles
func CreateUser(t testing.TB, db *gorm.DB, email string, roles ...string) *user.User {
	t.Helper()

	u := &user.User{
		Email:           email,
		FirstName:       "Test",
		LastName:        "User",
		ShippingAddress: "1 Test Street, Testville",
		IsActive:        true,
	}
	u.SetRoles(roles...)
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateCustomer inserts a profile with the CUSTOMER role
func CreateCustomer(t testing.TB, db *gorm.DB, email string) *user.User {
	return CreateUser(t, db, email, auth.RoleCustomer)
}

// CreateProduct inserts an active product
func CreateProduct(t testing.TB, db *gorm.DB, sellerID uuid.UUID, name, price string, stock int) *product.Product {
	t.Helper()

	p := &product.Product{
		SellerID:  sellerID,
		Name:      name,
		SKU:       fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
		AvgRating: decimal.Zero,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// Stock reads a product's current stock
func Stock(t testing.TB, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()

	stock, err := product.CurrentStock(db, productID)
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

// CreateOrder inserts an order for customerID with one line per product at qty 1
func CreateOrder(t testing.TB, db *gorm.DB, customerID uuid.UUID, status order.OrderStatus, products ...*product.Product) *order.Order {
	t.Helper()

	o := &order.Order{CustomerID: customerID, Status: status, ShippingAddress: "1 Test Street, Testville"}
	for _, p := range products {
		o.AddItem(order.OrderItem{
			ProductID:   p.ID,
			SellerID:    p.SellerID,
			ProductName: p.Name,
			SKU:         p.SKU,
			Quantity:    1,
			UnitPrice:   p.Price,
		})
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

// Deactivate marks a product inactive
func Deactivate(t testing.TB, db *gorm.DB, productID uuid.UUID) {
	t.Helper()

	if err := db.Model(&product.Product{}).Where("id = ?", productID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}
}
