package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketplace-core/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			Issuer:            "test-identity",
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestNewPrincipal_NormalizesRoles(t *testing.T) {
	p := NewPrincipal(uuid.New(), "a@example.com", "ROLE_ADMIN", " seller ", "")

	assert.Equal(t, []string{RoleAdmin, RoleSeller}, p.Roles)
	assert.True(t, p.IsAdmin())
	assert.True(t, p.HasRole(RoleSeller))
	assert.False(t, p.HasRole(RoleCustomer))
	assert.True(t, p.HasAnyRole(RoleCustomer, RoleSeller))
	assert.False(t, Principal{}.HasAnyRole(RoleCustomer))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())
	p := NewPrincipal(uuid.New(), "buyer@example.com", RoleCustomer)

	token, err := m.GenerateAccessToken(p)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal())
}

func TestJWTManager_Rejects(t *testing.T) {
	cfg := testConfig()
	m := NewJWTManager(cfg)
	p := NewPrincipal(uuid.New(), "buyer@example.com", RoleCustomer)

	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	foreign, err := NewJWTManager(other).GenerateAccessToken(p)
	require.NoError(t, err)

	wrongIssuer := testConfig()
	wrongIssuer.JWT.Issuer = "someone-else"
	misissued, err := NewJWTManager(wrongIssuer).GenerateAccessToken(p)
	require.NoError(t, err)

	expiredCfg := testConfig()
	expiredCfg.JWT.AccessTokenExpiry = -time.Minute
	expired, err := NewJWTManager(expiredCfg).GenerateAccessToken(p)
	require.NoError(t, err)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           p.ID,
		TokenType:        "refresh",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: cfg.JWT.Issuer},
	})
	refreshToken, err := refresh.SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"wrong issuer": misissued,
		"expired":      expired,
		"refresh type": refreshToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ValidateAccessToken(token)
			assert.Error(t, err)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Bearer "))
}
