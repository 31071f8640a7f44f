// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/product"
)

// ProductHandler handles catalog and seller product endpoints
type ProductHandler struct {
	productService *product.Service
	log            logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{productService: productService, log: log}
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Product retrieved successfully", p)
}

// GetSellerProducts handles GET /seller/products
func (h *ProductHandler) GetSellerProducts(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	params, ok := pageParams(c)
	if !ok {
		return
	}

	page, err := h.productService.ListSellerProducts(c.Request.Context(), principal.ID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Products retrieved successfully", page)
}

// CreateProduct handles POST /seller/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req product.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	p, err := h.productService.CreateProduct(c.Request.Context(), principal, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusCreated, "Product created successfully", p)
}

// UpdateProduct handles PUT /seller/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	var req product.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	p, err := h.productService.UpdateProduct(c.Request.Context(), principal, id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Product updated successfully", p)
}

// DeactivateProduct handles DELETE /seller/products/:id
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeactivateProduct(c.Request.Context(), principal, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated successfully"})
}
