package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/config"
	httpserver "github.com/your-org/marketplace-core/internal/interfaces/http"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/testutil/testdb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "Marketplace Core", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			Issuer:            "test-identity",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{RateLimitPerMinute: 100},
		Order:    config.OrderConfig{StrictTransitions: true},
		Metrics:  config.MetricsConfig{Enabled: true, Namespace: "test", Path: "/metrics"},
	}
}

func TestServer_PurchaseFlow(t *testing.T) {
	cfg := testConfig()
	db := testdb.New(t)
	log, _ := logtest.NewNullLogger()
	srv := httpserver.NewServer(cfg, db, nil, log, prometheus.NewRegistry())
	api := client{t: t, handler: srv.Handler()}

	jwtManager := auth.NewJWTManager(cfg)
	token := func(p auth.Principal) string {
		tok, err := jwtManager.GenerateAccessToken(p)
		require.NoError(t, err)
		return tok
	}
	// The buyer exists only in the identity service until their first request.
	buyerPrincipal := auth.NewPrincipal(uuid.New(), "buyer@example.com", auth.RoleCustomer)
	buyer := token(buyerPrincipal)
	stranger := token(testdb.CreateCustomer(t, db, "stranger@example.com").Principal())
	seller := token(testdb.CreateUser(t, db, "seller@example.com", auth.RoleSeller).Principal())
	admin := token(testdb.CreateUser(t, db, "admin@example.com", auth.RoleAdmin).Principal())

	status, env := api.do(http.MethodPost, "/api/v1/seller/products", seller, map[string]interface{}{
		"name": "Lamp", "sku": "LAMP-1", "price": "25.00", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	status, _ = api.do(http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = api.do(http.MethodPost, "/api/v1/seller/products", buyer, map[string]interface{}{
		"name": "Lamp", "sku": "LAMP-2", "price": "25.00",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Code)

	status, env = api.do(http.MethodPut, "/api/v1/me", buyer, map[string]string{
		"first_name": "Ada", "shipping_address": "12 Analytical Row",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var profile struct {
		ID              string `json:"id"`
		Email           string `json:"email"`
		FirstName       string `json:"first_name"`
		ShippingAddress string `json:"shipping_address"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, buyerPrincipal.ID.String(), profile.ID)
	assert.Equal(t, "buyer@example.com", profile.Email)
	assert.Equal(t, "Ada", profile.FirstName)
	assert.Equal(t, "12 Analytical Row", profile.ShippingAddress)

	status, env = api.do(http.MethodPost, "/api/v1/cart/items", buyer, map[string]interface{}{
		"product_id": created.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = api.do(http.MethodPost, "/api/v1/wishlist/items", buyer, map[string]interface{}{"product_id": created.ID})
	require.Equal(t, http.StatusCreated, status, env.Error)
	status, env = api.do(http.MethodPost, "/api/v1/wishlist/items/"+created.ID+"/move-to-cart", buyer, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var moved struct {
		Items []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	require.Len(t, moved.Items, 1)
	assert.Equal(t, 2, moved.Items[0].Quantity)

	status, env = api.do(http.MethodGet, "/api/v1/wishlist", buyer, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var saved struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Empty(t, saved.Items)

	status, env = api.do(http.MethodPost, "/api/v1/cart/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, status, env.Error)
	var placed struct {
		ID              string `json:"id"`
		OrderNumber     string `json:"order_number"`
		Status          string `json:"status"`
		TotalAmount     string `json:"total_amount"`
		ShippingAddress string `json:"shipping_address"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, "PENDING", placed.Status)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, placed.OrderNumber)
	assert.True(t, decimal.RequireFromString(placed.TotalAmount).Equal(decimal.NewFromInt(50)), placed.TotalAmount)
	assert.Equal(t, "12 Analytical Row", placed.ShippingAddress)

	status, env = api.do(http.MethodPost, "/api/v1/cart/checkout", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cart is empty", env.Error)

	status, _ = api.do(http.MethodGet, "/api/v1/orders/"+placed.ID, buyer, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/api/v1/orders/"+placed.ID, seller, nil)
	assert.Equal(t, http.StatusOK, status)
	status, env = api.do(http.MethodGet, "/api/v1/orders/"+placed.ID, stranger, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Code)
	status, _ = api.do(http.MethodGet, "/api/v1/orders/not-a-uuid", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	path := "/api/v1/admin/orders/" + placed.ID + "/status"
	status, _ = api.do(http.MethodPut, path, buyer, map[string]string{"status": "PROCESSING"})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodPut, path, admin, map[string]string{"status": "DELIVERED"})
	assert.Equal(t, http.StatusBadRequest, status)
	for _, next := range []string{"PROCESSING", "SHIPPED", "DELIVERED"} {
		status, env = api.do(http.MethodPut, path, admin, map[string]string{"status": next})
		require.Equal(t, http.StatusOK, status, env.Error)
	}

	reviews := "/api/v1/products/" + created.ID + "/reviews"
	status, env = api.do(http.MethodPost, reviews, buyer, map[string]interface{}{"rating": 4, "comment": "bright"})
	require.Equal(t, http.StatusCreated, status, env.Error)
	status, env = api.do(http.MethodPost, reviews, buyer, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "you have already reviewed this product", env.Error)

	status, env = api.do(http.MethodGet, "/api/v1/products/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var listed struct {
		Stock        int `json:"stock"`
		ReviewsCount int `json:"reviews_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Equal(t, 3, listed.Stock)
	assert.Equal(t, 1, listed.ReviewsCount)

	status, _ = api.do(http.MethodGet, "/api/v1/admin/orders?status=delivered", admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_OpsEndpoints(t *testing.T) {
	cfg := testConfig()
	db := testdb.New(t)
	log, _ := logtest.NewNullLogger()
	srv := httpserver.NewServer(cfg, db, nil, log, prometheus.NewRegistry())

	for _, path := range []string{"/health", "/ready"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
