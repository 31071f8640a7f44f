// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/domain/review"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/domain/wishlist"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// Models lists every persisted model in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},

		&product.Category{},
		&product.Product{},

		&cart.Cart{},
		&cart.CartItem{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&review.Review{},

		&wishlist.WishlistItem{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("Running database auto-migrations")

	for _, model := range Models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates the composite indexes the query paths rely on
func (m *Migration) CreateIndexes() error {
	m.log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_seller_created ON products(seller_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",

		"CREATE INDEX IF NOT EXISTS idx_orders_customer_created ON orders(customer_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_status ON orders(customer_id, status)",

		"CREATE INDEX IF NOT EXISTS idx_order_items_order_product ON order_items(order_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",

		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
	}

	failed := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).WithField("sql", indexSQL).Warn("Failed to create index")
			failed++
		}
	}

	m.log.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Index creation finished")
	if failed > 0 {
		return fmt.Errorf("%d of %d indexes could not be created", failed, len(indexes))
	}
	return nil
}

// SeedInitialData inserts development fixtures. Existing rows are left alone.
func (m *Migration) SeedInitialData() error {
	m.log.Info("Seeding initial data")

	categories, err := m.seedCategories()
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if _, err := m.seedUser("admin@example.com", "Admin", "User", auth.RoleAdmin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	seller, err := m.seedUser("seller@example.com", "Sam", "Seller", auth.RoleSeller, auth.RoleCustomer)
	if err != nil {
		return fmt.Errorf("failed to seed seller: %w", err)
	}
	if _, err := m.seedUser("customer@example.com", "Casey", "Customer", auth.RoleCustomer); err != nil {
		return fmt.Errorf("failed to seed customer: %w", err)
	}

	if err := m.seedProducts(seller, categories); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	m.log.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedCategories() (map[string]*product.Category, error) {
	defaults := []product.Category{
		{Name: "Electronics", Description: "Electronic devices, gadgets, and accessories"},
		{Name: "Books", Description: "Books, eBooks, and educational materials"},
		{Name: "Home & Garden", Description: "Home improvement, furniture, and garden supplies"},
	}

	seeded := make(map[string]*product.Category, len(defaults))
	for i := range defaults {
		c := defaults[i]
		err := m.db.Where(product.Category{Name: c.Name}).FirstOrCreate(&c).Error
		if err != nil {
			return nil, err
		}
		seeded[c.Name] = &c
	}
	return seeded, nil
}

func (m *Migration) seedUser(email, first, last string, roles ...string) (*user.User, error) {
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		m.log.WithField("email", email).Debug("Seed user already exists")
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := user.User{
		Email:           email,
		FirstName:       first,
		LastName:        last,
		ShippingAddress: "221B Baker Street, London NW1 6XE",
		IsActive:        true,
	}
	u.SetRoles(roles...)
	if err := m.db.Create(&u).Error; err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"email": email, "roles": u.Roles}).Info("Seed user created")
	return &u, nil
}

func (m *Migration) seedProducts(seller *user.User, categories map[string]*product.Category) error {
	var count int64
	if err := m.db.Model(&product.Product{}).Where("seller_id = ?", seller.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.log.Debug("Seed products already exist")
		return nil
	}

	products := []product.Product{
		{
			SKU:         "DEMO-LAPTOP-001",
			Name:        "Ultralight Laptop",
			Description: "13 inch laptop with all-day battery life.",
			Price:       decimal.RequireFromString("1299.00"),
			Stock:       10,
			CategoryID:  &categories["Electronics"].ID,
		},
		{
			SKU:         "DEMO-HEADPHONES-001",
			Name:        "Noise Cancelling Headphones",
			Description: "Over-ear wireless headphones.",
			Price:       decimal.RequireFromString("249.99"),
			Stock:       25,
			CategoryID:  &categories["Electronics"].ID,
		},
		{
			SKU:         "DEMO-BOOK-001",
			Name:        "The Go Programming Language",
			Description: "A thorough introduction to Go.",
			Price:       decimal.RequireFromString("39.95"),
			Stock:       50,
			CategoryID:  &categories["Books"].ID,
		},
	}

	for i := range products {
		products[i].SellerID = seller.ID
		products[i].IsActive = true
		products[i].AvgRating = decimal.Zero
		if err := m.db.Create(&products[i]).Error; err != nil {
			return err
		}
	}
	m.log.WithField("count", len(products)).Info("Seed products created")
	return nil
}
