// internal/domain/review/service.go
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/pkg/metrics"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service handles product reviews and the rating aggregate
type Service struct {
	db      *gorm.DB
	metrics *metrics.Business
	log     logrus.FieldLogger
}

// NewService creates a new review service
func NewService(db *gorm.DB, m *metrics.Business, log logrus.FieldLogger) *Service {
	return &Service{db: db, metrics: m, log: log}
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// ReviewPage is a page of reviews
type ReviewPage struct {
	Reviews    []Review              `json:"reviews"`
	Pagination pagination.Pagination `json:"pagination"`
}

// CreateReview records a rating from a customer who received the product, then
// refreshes the product's average. The product row stays locked for the whole
// transaction so concurrent reviews of one product recompute in sequence.
func (s *Service) CreateReview(ctx context.Context, principal auth.Principal, productID uuid.UUID, req *CreateReviewRequest) (*Review, error) {
	const op = "review.create"

	if !principal.HasRole(auth.RoleCustomer) {
		return nil, apperror.Unauthorized(op, "only customers can review products")
	}

	var created *Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := product.LockForUpdate(tx, productID); err != nil {
			return apperror.FromDB(op, err, "Product", productID)
		}

		if req.Rating < MinRating || req.Rating > MaxRating {
			return apperror.BadRequest(op, "rating must be between %d and %d", MinRating, MaxRating)
		}

		purchased, err := order.HasDeliveredPurchase(tx, principal.ID, productID)
		if err != nil {
			return apperror.Internal(op, err)
		}
		if !purchased {
			return apperror.BadRequest(op, "you can only review products you have purchased and received")
		}

		var existing int64
		if err := tx.Model(&Review{}).
			Where("product_id = ? AND customer_id = ?", productID, principal.ID).
			Count(&existing).Error; err != nil {
			return apperror.Internal(op, err)
		}
		if existing > 0 {
			return apperror.BadRequest(op, "you have already reviewed this product")
		}

		r := Review{
			ProductID:  productID,
			CustomerID: principal.ID,
			Rating:     req.Rating,
			Comment:    strings.TrimSpace(req.Comment),
		}
		if err := tx.Create(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.BadRequest(op, "you have already reviewed this product")
			}
			return apperror.Internal(op, err)
		}

		if _, err := RecomputeRating(tx, productID); err != nil {
			return apperror.Internal(op, err)
		}
		created = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordReview()
	s.metrics.RecordRatingRecompute()
	s.log.WithFields(logrus.Fields{
		"review_id":   created.ID,
		"product_id":  productID,
		"customer_id": principal.ID,
		"rating":      created.Rating,
	}).Info("Review created")
	return created, nil
}

// ListProductReviews pages through a product's reviews, newest first
func (s *Service) ListProductReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ReviewPage, error) {
	const op = "review.list"
	params = params.Normalize()
	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&product.Product{}).Where("id = ?", productID).Count(&exists).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}
	if exists == 0 {
		return nil, apperror.NotFound(op, "Product", productID)
	}

	query := db.Model(&Review{}).Where("product_id = ?", productID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}

	reviews := []Review{}
	if err := query.Order("created_at DESC").Offset(params.Offset()).Limit(params.Limit).Find(&reviews).Error; err != nil {
		return nil, apperror.Internal(op, err)
	}
	return &ReviewPage{Reviews: reviews, Pagination: pagination.New(params, total)}, nil
}

// RefreshRating recomputes a product's rating from its reviews. Admin only.
func (s *Service) RefreshRating(ctx context.Context, principal auth.Principal, productID uuid.UUID) (*product.Product, error) {
	const op = "review.refresh_rating"

	if !principal.IsAdmin() {
		return nil, apperror.Unauthorized(op, "only administrators can refresh ratings")
	}

	var refreshed *product.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := product.LockForUpdate(tx, productID)
		if err != nil {
			return apperror.FromDB(op, err, "Product", productID)
		}
		agg, err := RecomputeRating(tx, productID)
		if err != nil {
			return apperror.Internal(op, err)
		}
		p.AvgRating = agg.Average
		p.ReviewsCount = agg.Count
		refreshed = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRatingRecompute()
	s.log.WithFields(logrus.Fields{
		"product_id":    productID,
		"avg_rating":    refreshed.AvgRating.StringFixed(2),
		"reviews_count": refreshed.ReviewsCount,
	}).Info("Product rating refreshed")
	return refreshed, nil
}

// Rating is a product's review aggregate
type Rating struct {
	Average decimal.Decimal
	Count   int
}

// RecomputeRating rewrites the product's average rating and review count from
// the stored reviews. The caller should hold the product row lock.
func RecomputeRating(tx *gorm.DB, productID uuid.UUID) (Rating, error) {
	var ratings []int
	if err := tx.Model(&Review{}).Where("product_id = ?", productID).Pluck("rating", &ratings).Error; err != nil {
		return Rating{}, err
	}

	agg := Rating{Average: AverageRating(ratings), Count: len(ratings)}
	err := tx.Model(&product.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"avg_rating":    agg.Average,
		"reviews_count": agg.Count,
	}).Error
	return agg, err
}

// AverageRating is the arithmetic mean rounded half-up to two places, or zero when empty
func AverageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(ratings)))).Round(2)
}
