// internal/infrastructure/database/postgres/connection.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connection wraps the GORM handle
type Connection struct {
	db *gorm.DB
}

// NewConnection opens the PostgreSQL pool described by cfg
func NewConnection(cfg *config.Config, log *logrus.Logger) (*Connection, error) {
	level := gormlogger.Warn
	if cfg.App.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("PostgreSQL connection established")

	return &Connection{db: db}, nil
}

// GetDB returns the GORM handle
func (c *Connection) GetDB() *gorm.DB {
	return c.db
}

// Health pings the database
func (c *Connection) Health(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close closes the pool
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
