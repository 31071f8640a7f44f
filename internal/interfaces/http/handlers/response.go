// internal/interfaces/http/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
	"github.com/your-org/marketplace-core/internal/pkg/pagination"
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error","code"}. Internal failures are logged with
// their cause and answered with a generic message.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		log.WithFields(logrus.Fields{
			"op":         apperror.Op(err),
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("Request failed")
	}
	_ = c.Error(err)
	c.JSON(statusFor(kind), gin.H{
		"error": apperror.Message(err),
		"code":  string(kind),
	})
}

func respondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"message": message,
		"data":    data,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  string(apperror.KindBadRequest),
	})
}

// requirePrincipal returns the caller or writes 401
func requirePrincipal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
			"code":  "unauthenticated",
		})
	}
	return p, ok
}

// uuidParam parses a path parameter or writes 400
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) (pagination.Params, bool) {
	var p pagination.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		badRequest(c, "Invalid query parameters")
		return p, false
	}
	return p, true
}
