// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/wishlist"
)

// WishlistHandler handles wishlist-related HTTP requests
type WishlistHandler struct {
	wishlistService *wishlist.Service
	log             logrus.FieldLogger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *wishlist.Service, log logrus.FieldLogger) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService, log: log}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := h.wishlistService.GetWishlist(c.Request.Context(), principal.ID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Wishlist retrieved successfully", page)
}

// AddItem handles POST /wishlist/items
func (h *WishlistHandler) AddItem(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req wishlist.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	item, err := h.wishlistService.AddItem(c.Request.Context(), principal.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusCreated, "Item added to wishlist successfully", item)
}

// RemoveItem handles DELETE /wishlist/items/:productId
func (h *WishlistHandler) RemoveItem(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	if err := h.wishlistService.RemoveItem(c.Request.Context(), principal.ID, productID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist successfully"})
}

// MoveToCart handles POST /wishlist/items/:productId/move-to-cart. The body is optional.
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	var req wishlist.MoveToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request data")
			return
		}
	}

	view, err := h.wishlistService.MoveToCart(c.Request.Context(), principal.ID, productID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Item moved to cart successfully", view)
}
