// internal/domain/cart/guest_store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GuestCartStore persists anonymous carts
type GuestCartStore interface {
	Get(ctx context.Context, sessionID string) (*GuestCart, error)
	Save(ctx context.Context, cart *GuestCart) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisGuestCartStore keeps guest carts as JSON values with a sliding TTL
type RedisGuestCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuestCartStore creates a store backed by client
func NewRedisGuestCartStore(client *redis.Client, ttl time.Duration) *RedisGuestCartStore {
	return &RedisGuestCartStore{client: client, ttl: ttl}
}

func guestCartKey(sessionID string) string {
	return fmt.Sprintf("guest_cart:%s", sessionID)
}

// Get returns the session's cart, or an empty one if none is stored
func (s *RedisGuestCartStore) Get(ctx context.Context, sessionID string) (*GuestCart, error) {
	data, err := s.client.Get(ctx, guestCartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		now := time.Now().UTC()
		return &GuestCart{SessionID: sessionID, Items: []GuestItem{}, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read guest cart: %w", err)
	}

	var cart GuestCart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart and refreshes its expiry
func (s *RedisGuestCartStore) Save(ctx context.Context, cart *GuestCart) error {
	cart.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	if err := s.client.Set(ctx, guestCartKey(cart.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisGuestCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, guestCartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete guest cart: %w", err)
	}
	return nil
}
