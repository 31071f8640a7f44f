// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-core/internal/interfaces/http/handlers"
	"github.com/your-org/marketplace-core/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
	Product  *handlers.ProductHandler
	Review   *handlers.ReviewHandler
	Profile  *handlers.UserProfileHandler
	Wishlist *handlers.WishlistHandler
}

// SetupRoutes registers every API route. Authenticated requests keep the caller's
// profile in step with the token through profiles.
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager, profiles middleware.ProfileStore) {
	authenticated := middleware.AuthMiddleware(jwtManager, profiles)

	me := rg.Group("/me")
	me.Use(authenticated)
	{
		me.GET("", h.Profile.GetProfile)
		me.PUT("", h.Profile.UpdateProfile)
	}

	SetupCartRoutes(rg, h, authenticated)
	SetupWishlistRoutes(rg, h, authenticated)
	SetupGuestCartRoutes(rg, h)
	SetupOrderRoutes(rg, h, authenticated)
	SetupProductRoutes(rg, h, authenticated)
	SetupSellerRoutes(rg, h, authenticated)
	SetupAdminRoutes(rg, h, authenticated)
}

// SetupCartRoutes sets up customer cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(authenticated, middleware.RequireRole(auth.RoleCustomer))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
		cart.POST("/merge", h.Cart.MergeGuestCart)
		cart.POST("/checkout", h.Checkout.Checkout)
	}
}

// SetupWishlistRoutes sets up customer wishlist routes
func SetupWishlistRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	wishlist := rg.Group("/wishlist")
	wishlist.Use(authenticated, middleware.RequireRole(auth.RoleCustomer))
	{
		wishlist.GET("", h.Wishlist.GetWishlist)
		wishlist.POST("/items", h.Wishlist.AddItem)
		wishlist.DELETE("/items/:productId", h.Wishlist.RemoveItem)
		wishlist.POST("/items/:productId/move-to-cart", h.Wishlist.MoveToCart)
	}
}

// SetupGuestCartRoutes sets up anonymous cart routes keyed by session
func SetupGuestCartRoutes(rg *gin.RouterGroup, h *Handlers) {
	guest := rg.Group("/guest-cart")
	{
		guest.GET("", h.Cart.GetGuestCart)
		guest.POST("/items", h.Cart.AddGuestItem)
		guest.DELETE("/items/:productId", h.Cart.RemoveGuestItem)
	}
}

// SetupOrderRoutes sets up order routes visible to any authenticated caller
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.Use(authenticated)
	{
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
	}
}

// SetupProductRoutes sets up public catalog and review routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	products := rg.Group("/products")
	{
		products.GET("/:id", h.Product.GetProduct)
		products.GET("/:id/reviews", h.Review.GetProductReviews)
		products.POST("/:id/reviews", authenticated, middleware.RequireRole(auth.RoleCustomer), h.Review.CreateReview)
	}
}

// SetupSellerRoutes sets up seller catalog and order routes
func SetupSellerRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	seller := rg.Group("/seller")
	seller.Use(authenticated, middleware.RequireRole(auth.RoleSeller, auth.RoleAdmin))
	{
		seller.GET("/orders", h.Order.GetSellerOrders)
		seller.GET("/products", h.Product.GetSellerProducts)
		seller.POST("/products", h.Product.CreateProduct)
		seller.PUT("/products/:id", h.Product.UpdateProduct)
		seller.DELETE("/products/:id", h.Product.DeactivateProduct)
	}
}

// SetupAdminRoutes sets up admin-only routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, authenticated gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authenticated, middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/orders", h.Order.ListOrders)
		admin.PUT("/orders/:id/status", h.Order.UpdateOrderStatus)
		admin.POST("/products/:id/rating/refresh", h.Review.RefreshRating)
	}
}
