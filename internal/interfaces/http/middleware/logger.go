// internal/interfaces/http/middleware/logger.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Logger logs one structured entry per request
func Logger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id":    c.GetString(requestIDKey),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status_code":   c.Writer.Status(),
			"latency":       time.Since(start).String(),
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		})
		if userID := c.GetString("user_id"); userID != "" {
			entry = entry.WithField("user_id", userID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("HTTP request completed with server error")
		case status >= 400:
			entry.Warn("HTTP request completed with client error")
		default:
			entry.Info("HTTP request completed successfully")
		}
	}
}
