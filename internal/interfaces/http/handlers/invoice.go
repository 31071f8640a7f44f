// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
)

// InvoiceRenderer turns an order into a printable document
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order, customer *user.User) ([]byte, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orderService *order.Service
	userService  *user.Service
	renderer     InvoiceRenderer
	log          logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, userService *user.Service, renderer InvoiceRenderer, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		userService:  userService,
		renderer:     renderer,
		log:          log,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}

	// Same visibility rule as GET /orders/:id
	o, err := h.orderService.GetOrder(c.Request.Context(), id, principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	customer, err := h.userService.GetByID(c.Request.Context(), o.CustomerID)
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		respondError(c, h.log, err)
		return
	}

	pdf, err := h.renderer.GenerateInvoice(o, customer)
	if err != nil {
		respondError(c, h.log, apperror.Internal("invoice.generate", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
