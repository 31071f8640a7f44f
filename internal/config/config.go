// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the marketplace service
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Order    OrderConfig
	Cart     CartConfig
	Metrics  MetricsConfig
	Email    EmailConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool

	// Printed on invoices
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// JWTConfig contains settings for verifying tokens issued by the identity service
type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessTokenExpiry time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OrderConfig controls the order lifecycle
type OrderConfig struct {
	// StrictTransitions rejects status changes outside the lifecycle graph.
	StrictTransitions bool
}

// CartConfig contains cart settings
type CartConfig struct {
	GuestCartTTL time.Duration
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Path      string
}

// EmailConfig selects how order notifications are delivered
type EmailConfig struct {
	// Provider is "log" or "smtp"
	Provider     string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
	FromEmail    string
	FromName     string
	ReplyTo      string
	BaseURL      string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Marketplace Core"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			Environment:    getEnv("APP_ENV", "development"),
			Debug:          getEnvAsBool("APP_DEBUG", true),
			CompanyName:    getEnv("COMPANY_NAME", "Marketplace Inc."),
			CompanyAddress: getEnv("COMPANY_ADDRESS", ""),
			CompanyEmail:   getEnv("COMPANY_EMAIL", "support@example.com"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 1<<20),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "marketplace_db"),
			User:         getEnv("DB_USER", "marketplace_user"),
			Password:     getEnv("DB_PASSWORD", "marketplace_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-in-production"),
			Issuer:            getEnv("JWT_ISSUER", "marketplace-identity"),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Order: OrderConfig{
			StrictTransitions: getEnvAsBool("ORDER_STRICT_TRANSITIONS", true),
		},
		Cart: CartConfig{
			GuestCartTTL: getEnvAsDuration("GUEST_CART_TTL", 7*24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvAsBool("METRICS_ENABLED", true),
			Namespace: getEnv("METRICS_NAMESPACE", "marketplace"),
			Path:      getEnv("METRICS_PATH", "/metrics"),
		},
		Email: EmailConfig{
			Provider:     getEnv("EMAIL_PROVIDER", "log"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPUseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
			FromName:     getEnv("FROM_NAME", "Marketplace"),
			ReplyTo:      getEnv("REPLY_TO_EMAIL", ""),
			BaseURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}

	switch c.Email.Provider {
	case "", "log":
	case "smtp":
		if c.Email.SMTPHost == "" || c.Email.FromEmail == "" {
			return fmt.Errorf("SMTP_HOST and FROM_EMAIL are required for the smtp email provider")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %s", c.Email.Provider)
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
