// internal/interfaces/http/middleware/cors.go
package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-core/internal/config"
)

// CORS returns a middleware that handles Cross-Origin Resource Sharing.
// A "*" entry allows every origin without credentials; "*.example.com" entries match subdomains.
func CORS(cfg config.SecurityConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg config.SecurityConfig) cors.Config {
	c := cors.Config{
		AllowMethods: cfg.CORSAllowedMethods,
		AllowHeaders: cfg.CORSAllowedHeaders,
		MaxAge:       24 * time.Hour,
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		c.AllowOriginFunc = func(string) bool { return false }
		return c
	}

	c.AllowOrigins = cfg.CORSAllowedOrigins
	c.AllowCredentials = true
	for _, origin := range cfg.CORSAllowedOrigins {
		if strings.Contains(origin, "*") {
			c.AllowWildcard = true
		}
	}
	return c
}
