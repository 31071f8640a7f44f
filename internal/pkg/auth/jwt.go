// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/your-org/marketplace-core/internal/config"
)

const tokenTypeAccess = "access"

// Claims represents the JWT claims issued by the identity service
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the actor passed to domain services
func (c *Claims) Principal() Principal {
	return NewPrincipal(c.UserID, c.Email, c.Roles...)
}

// JWTManager handles JWT operations
type JWTManager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret: []byte(cfg.JWT.Secret),
		issuer: cfg.JWT.Issuer,
		expiry: cfg.JWT.AccessTokenExpiry,
	}
}

// GenerateAccessToken signs an access token for the given principal.
// The identity service owns token issuance in production; this is used by
// cmd/devtoken and tests.
func (j *JWTManager) GenerateAccessToken(p Principal) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		UserID:    p.ID,
		Email:     p.Email,
		Roles:     p.Roles,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("user:%s", p.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateAccessToken validates and parses an access token
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("invalid token type: expected access, got %q", claims.TokenType)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token has no user id")
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
