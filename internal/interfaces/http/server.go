// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/config"
	"github.com/your-org/marketplace-core/internal/domain/cart"
	"github.com/your-org/marketplace-core/internal/domain/checkout"
	"github.com/your-org/marketplace-core/internal/domain/order"
	"github.com/your-org/marketplace-core/internal/domain/product"
	"github.com/your-org/marketplace-core/internal/domain/review"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/domain/wishlist"
	"github.com/your-org/marketplace-core/internal/interfaces/http/handlers"
	"github.com/your-org/marketplace-core/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-core/internal/interfaces/http/routes"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/pkg/email"
	"github.com/your-org/marketplace-core/internal/pkg/metrics"
	"github.com/your-org/marketplace-core/internal/pkg/notify"
	"github.com/your-org/marketplace-core/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	registry    *prometheus.Registry
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil, in which
// case rate limiting is skipped and guest carts are unavailable.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *logrus.Logger, registry *prometheus.Registry) *Server {
	s := &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		log:         logger,
		registry:    registry,
		startedAt:   time.Now(),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxy list, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("🚀 HTTP Server starting on port %s", s.config.Server.Port)
	log.Printf("🌐 API Base URL: http://localhost:%s/api/v1", s.config.Server.Port)
	log.Printf("📊 Health Check: http://localhost:%s/health", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down HTTP server...")
	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("✅ HTTP server stopped gracefully")
	return nil
}

func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders())
	if s.config.Metrics.Enabled {
		s.gin.Use(middleware.NewHTTPMetrics(s.config.Metrics.Namespace, s.registry).Handler())
	}
	s.gin.Use(middleware.RateLimit(s.redisClient, s.config.Security.RateLimitPerMinute, s.log))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	if s.config.Metrics.Enabled {
		s.gin.GET(s.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	var businessMetrics *metrics.Business
	if s.config.Metrics.Enabled {
		businessMetrics = metrics.NewBusiness(s.config.Metrics.Namespace, s.registry)
	}
	var notifier notify.Notifier = notify.NewLogNotifier(s.log)
	if s.config.Email.Provider == "smtp" {
		notifier = notify.NewEmailNotifier(email.NewEmailService(s.config.Email), s.log)
	}

	var guests cart.GuestCartStore
	if s.redisClient != nil {
		guests = cart.NewRedisGuestCartStore(s.redisClient, s.config.Cart.GuestCartTTL)
	}

	userService := user.NewService(s.db)
	cartService := cart.NewService(s.db, guests, businessMetrics, s.log)
	orderService := order.NewService(s.db, s.config.Order.StrictTransitions, notifier, businessMetrics, s.log)

	h := &routes.Handlers{
		Cart:     handlers.NewCartHandler(cartService, s.log),
		Checkout: handlers.NewCheckoutHandler(checkout.NewService(s.db, notifier, businessMetrics, s.log), s.log),
		Order:    handlers.NewOrderHandler(orderService, s.log),
		Invoice:  handlers.NewInvoiceHandler(orderService, userService, pdf.NewService(s.config), s.log),
		Product:  handlers.NewProductHandler(product.NewService(s.db, s.log), s.log),
		Review:   handlers.NewReviewHandler(review.NewService(s.db, businessMetrics, s.log), s.log),
		Profile:  handlers.NewUserProfileHandler(userService, s.log),
		Wishlist: handlers.NewWishlistHandler(wishlist.NewService(s.db, cartService, s.log), s.log),
	}

	routes.SetupRoutes(s.gin.Group("/api/v1"), h, auth.NewJWTManager(s.config), userService)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"cart":       "/api/v1/cart",
					"guest_cart": "/api/v1/guest-cart",
					"orders":     "/api/v1/orders",
					"products":   "/api/v1/products",
					"seller":     "/api/v1/seller",
					"admin":      "/api/v1/admin",
				},
			})
		})
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
