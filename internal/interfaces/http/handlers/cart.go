// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/cart"
)

const (
	sessionCookie = "session_id"
	sessionHeader = "X-Session-ID"
)

// CartHandler handles customer and guest cart endpoints
type CartHandler struct {
	cartService *cart.Service
	log         logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{cartService: cartService, log: log}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Cart retrieved successfully", view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), principal.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Item added to cart successfully", view)
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "id", "cart item")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	view, err := h.cartService.UpdateItem(c.Request.Context(), principal.ID, itemID, req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Cart item updated successfully", view)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "id", "cart item")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), principal.ID, itemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Item removed from cart successfully", view)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), principal.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}

// MergeGuestCart handles POST /cart/merge
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	result, err := h.cartService.MergeGuestCart(c.Request.Context(), principal.ID, sessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	respondData(c, http.StatusOK, "Guest cart merged successfully", result)
}

// GetGuestCart handles GET /guest-cart
func (h *CartHandler) GetGuestCart(c *gin.Context) {
	view, err := h.cartService.GetGuestCart(c.Request.Context(), h.getOrCreateSessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Cart retrieved successfully", view)
}

// AddGuestItem handles POST /guest-cart/items
func (h *CartHandler) AddGuestItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	view, err := h.cartService.AddGuestItem(c.Request.Context(), h.getOrCreateSessionID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Item added to cart successfully", view)
}

// RemoveGuestItem handles DELETE /guest-cart/items/:productId
func (h *CartHandler) RemoveGuestItem(c *gin.Context) {
	productID, ok := uuidParam(c, "productId", "product")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveGuestItem(c.Request.Context(), sessionID(c), productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Item removed from cart successfully", view)
}

// sessionID reads the guest session from the header, falling back to the cookie
func sessionID(c *gin.Context) string {
	if id := c.GetHeader(sessionHeader); id != "" {
		return id
	}
	id, _ := c.Cookie(sessionCookie)
	return id
}

// getOrCreateSessionID issues a new guest session when the request carries none
func (h *CartHandler) getOrCreateSessionID(c *gin.Context) string {
	id := sessionID(c)
	if id == "" {
		id = uuid.NewString()
		// 24 hours
		c.SetCookie(sessionCookie, id, 86400, "/", "", false, true)
		c.Header(sessionHeader, id)
	}
	return id
}
