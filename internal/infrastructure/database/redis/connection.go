// internal/infrastructure/database/redis/connection.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/config"
)

// Client wraps the Redis client
type Client struct {
	Redis *redis.Client
}

// NewConnection creates a new Redis connection
func NewConnection(cfg *config.Config, log logrus.FieldLogger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.WithField("addr", cfg.GetRedisAddr()).Info("Redis connection established")
	return &Client{Redis: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

// GetClient returns the Redis client instance
func (c *Client) GetClient() *redis.Client {
	return c.Redis
}

// Health checks the Redis connection health
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.Redis.Ping(ctx).Err()
}
