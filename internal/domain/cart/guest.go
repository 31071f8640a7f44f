// internal/domain/cart/guest.go
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"gorm.io/gorm"
)

var errGuestCartsDisabled = errors.New("guest cart store is not configured")

// SkippedLine is a guest line that could not be merged
type SkippedLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
}

// MergeResult reports the outcome of merging a guest cart
type MergeResult struct {
	Cart    *CartView     `json:"cart"`
	Merged  int           `json:"merged"`
	Skipped []SkippedLine `json:"skipped"`
}

// GetGuestCart returns the session's cart priced at current catalog prices
func (s *Service) GetGuestCart(ctx context.Context, sessionID string) (*CartView, error) {
	const op = "cart.guest_get"

	g, err := s.guestCart(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	return s.guestView(ctx, op, g)
}

// AddGuestItem adds to an anonymous cart with the same merge and stock rules as AddItem
func (s *Service) AddGuestItem(ctx context.Context, sessionID string, req *AddItemRequest) (*CartView, error) {
	const op = "cart.guest_add_item"

	if req.Quantity < 1 {
		return nil, apperror.BadRequest(op, "quantity must be at least 1")
	}
	g, err := s.guestCart(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	p, err := activeProduct(s.db.WithContext(ctx), op, req.ProductID)
	if err != nil {
		return nil, err
	}

	idx := g.FindItem(req.ProductID)
	requested := req.Quantity
	if idx >= 0 {
		requested += g.Items[idx].Quantity
	}
	if !p.HasStock(requested) {
		return nil, apperror.BadRequest(op, "insufficient stock for product %s: requested %d, available %d", p.Name, requested, p.Stock)
	}

	if idx >= 0 {
		g.Items[idx].Quantity = requested
	} else {
		g.Items = append(g.Items, GuestItem{ProductID: req.ProductID, Quantity: requested, AddedAt: time.Now().UTC()})
	}
	if err := s.guests.Save(ctx, g); err != nil {
		return nil, apperror.Internal(op, err)
	}

	s.metrics.RecordCartAdd()
	return s.guestView(ctx, op, g)
}

// RemoveGuestItem drops a product line from an anonymous cart
func (s *Service) RemoveGuestItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error) {
	const op = "cart.guest_remove_item"

	g, err := s.guestCart(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	idx := g.FindItem(productID)
	if idx < 0 {
		return nil, apperror.NotFound(op, "Cart item", productID)
	}
	g.Items = append(g.Items[:idx], g.Items[idx+1:]...)
	if err := s.guests.Save(ctx, g); err != nil {
		return nil, apperror.Internal(op, err)
	}
	return s.guestView(ctx, op, g)
}

// MergeGuestCart moves an anonymous cart into the customer's cart. Each line goes
// through the merge law and stock check; lines that fail are skipped and reported.
// The guest cart is deleted afterwards.
func (s *Service) MergeGuestCart(ctx context.Context, customerID uuid.UUID, sessionID string) (*MergeResult, error) {
	const op = "cart.merge_guest"

	g, err := s.guestCart(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	result := &MergeResult{Skipped: []SkippedLine{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := findOrCreate(tx, customerID, true)
		if err != nil {
			return apperror.Internal(op, err)
		}
		for _, line := range g.Items {
			// Each line runs in a savepoint so a rejected line leaves the others intact.
			lineErr := tx.Transaction(func(sp *gorm.DB) error {
				return s.addLine(sp, op, c, line.ProductID, line.Quantity)
			})
			switch {
			case lineErr == nil:
				result.Merged++
			case apperror.Is(lineErr, apperror.KindInternal):
				return lineErr
			default:
				result.Skipped = append(result.Skipped, SkippedLine{
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
					Reason:    apperror.Message(lineErr),
				})
			}
		}
		result.Cart, err = s.loadView(tx, c)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.guests.Delete(ctx, sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Failed to delete merged guest cart")
	}

	s.metrics.RecordGuestMerge()
	s.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"merged":      result.Merged,
		"skipped":     len(result.Skipped),
	}).Info("Guest cart merged")
	return result, nil
}

func (s *Service) guestCart(ctx context.Context, op, sessionID string) (*GuestCart, error) {
	if s.guests == nil {
		return nil, apperror.Internal(op, errGuestCartsDisabled)
	}
	if sessionID == "" {
		return nil, apperror.BadRequest(op, "session id is required")
	}
	g, err := s.guests.Get(ctx, sessionID)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return g, nil
}

func (s *Service) guestView(ctx context.Context, op string, g *GuestCart) (*CartView, error) {
	ids := make([]uuid.UUID, 0, len(g.Items))
	for _, item := range g.Items {
		ids = append(ids, item.ProductID)
	}

	byID := make(map[uuid.UUID]*product.Product, len(ids))
	if len(ids) > 0 {
		var products []product.Product
		if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
			return nil, apperror.Internal(op, err)
		}
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
	}

	view := &CartView{
		SessionID: g.SessionID,
		Items:     make([]ItemView, 0, len(g.Items)),
		Subtotal:  decimal.Zero,
		UpdatedAt: g.UpdatedAt,
	}
	for _, item := range g.Items {
		view.add(itemView(item.ProductID, item.Quantity, byID[item.ProductID]))
	}
	return view, nil
}
