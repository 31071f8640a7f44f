// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/marketplace-core/internal/domain/user"
	"github.com/your-org/marketplace-core/internal/pkg/apperror"
	"github.com/your-org/marketplace-core/internal/pkg/auth"
)

const principalKey = "principal"

// ProfileStore keeps the local profile of a token's subject in step with its claims
type ProfileStore interface {
	EnsureProfile(ctx context.Context, p auth.Principal) (*user.User, error)
}

// AuthMiddleware validates the bearer token and stores the caller's principal in the context.
// When profiles is set, the caller's profile is created or refreshed from the token.
func AuthMiddleware(jwtManager *auth.JWTManager, profiles ProfileStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthenticated(c, "Authorization header required")
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			abortUnauthenticated(c, "Invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}

		principal := claims.Principal()
		if profiles != nil {
			if _, err := profiles.EnsureProfile(c.Request.Context(), principal); err != nil {
				abortProfileError(c, err)
				return
			}
		}
		c.Set(principalKey, principal)
		c.Set("user_id", principal.ID.String())
		c.Next()
	}
}

// RequireRole allows the request through only if the principal has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthenticated(c, "Authentication required")
			return
		}
		if !principal.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
				"code":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"code":  "unauthenticated",
	})
}

func abortProfileError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperror.KindOf(err) {
	case apperror.KindBadRequest:
		status = http.StatusBadRequest
	case apperror.KindConflict:
		status = http.StatusConflict
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": apperror.Message(err),
		"code":  string(apperror.KindOf(err)),
	})
}
