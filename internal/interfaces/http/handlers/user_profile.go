// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketplace-core/internal/domain/user"
)

// UserProfileHandler exposes the caller's marketplace profile
type UserProfileHandler struct {
	userService *user.Service
	log         logrus.FieldLogger
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(userService *user.Service, log logrus.FieldLogger) *UserProfileHandler {
	return &UserProfileHandler{userService: userService, log: log}
}

// GetProfile handles GET /me
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetByID(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Profile retrieved successfully", gin.H{
		"user":  profile,
		"roles": principal.Roles,
	})
}

// UpdateProfile handles PUT /me
func (h *UserProfileHandler) UpdateProfile(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), principal.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondData(c, http.StatusOK, "Profile updated successfully", profile)
}
