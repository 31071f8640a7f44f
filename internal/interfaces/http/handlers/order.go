// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/order"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	log          logrus.FieldLogger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orderService: orderService, log: log}
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := h.orderService.ListCustomerOrders(c.Request.Context(), principal, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Orders retrieved successfully", page)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), id, principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Order retrieved successfully", o)
}

// GetSellerOrders handles GET /seller/orders
func (h *OrderHandler) GetSellerOrders(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := h.orderService.ListSellerOrders(c.Request.Context(), principal, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Orders retrieved successfully", page)
}

// ListOrders handles GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var filter order.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), filter, principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Orders retrieved successfully", page)
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "order")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, &req, principal)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Order status updated successfully", o)
}
