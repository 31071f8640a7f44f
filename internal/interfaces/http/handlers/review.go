// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/review"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviewService *review.Service
	log           logrus.FieldLogger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, log: log}
}

// CreateReview handles POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	r, err := h.reviewService.CreateReview(c.Request.Context(), principal, productID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusCreated, "Review created successfully", r)
}

// GetProductReviews handles GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := h.reviewService.ListProductReviews(c.Request.Context(), productID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Reviews retrieved successfully", page)
}

// RefreshRating handles POST /admin/products/:id/rating/refresh
func (h *ReviewHandler) RefreshRating(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	p, err := h.reviewService.RefreshRating(c.Request.Context(), principal, productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Product rating refreshed successfully", p)
}
