// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/checkout"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	log             logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, log: log}
}

// Checkout handles POST /cart/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	o, err := h.checkoutService.Checkout(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusCreated, "Order placed successfully", o)
}
