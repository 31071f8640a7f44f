package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.Order.StrictTransitions)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.GuestCartTTL)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("SERVER_REQUEST_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Order.StrictTransitions)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100, cfg.Security.RateLimitPerMinute)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost", Name: "db", User: "user"},
			Redis:    RedisConfig{Host: "localhost"},
			JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "JWT_SECRET"},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "missing redis host", mutate: func(c *Config) { c.Redis.Host = "" }, wantErr: "REDIS_HOST"},
		{name: "bad metrics path", mutate: func(c *Config) { c.Metrics.Path = "metrics" }, wantErr: "METRICS_PATH"},
		{name: "unknown email provider", mutate: func(c *Config) { c.Email.Provider = "pigeon" }, wantErr: "EMAIL_PROVIDER"},
		{name: "smtp without host", mutate: func(c *Config) { c.Email.Provider = "smtp" }, wantErr: "SMTP_HOST"},
		{name: "smtp configured", mutate: func(c *Config) {
			c.Email = EmailConfig{Provider: "smtp", SMTPHost: "mail.example.com", FromEmail: "noreply@example.com"}
		}},
		{name: "metrics disabled ignores path", mutate: func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Path = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
