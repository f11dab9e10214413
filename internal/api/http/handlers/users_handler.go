package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bookreviewhub/backend/internal/api/dto"
	"github.com/bookreviewhub/backend/internal/auth"
	"github.com/bookreviewhub/backend/internal/service"
	apperrors "github.com/bookreviewhub/backend/pkg/util"
)

// UsersHandler serves account profiles.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromFiber(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	user, err := h.auth.Profile(c.UserContext(), identity.Username)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess(http.StatusOK, "Profile loaded", dto.NewUserProfile(user)))
}

// GetUser handles GET /api/admin/users/:username.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.auth.Profile(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSuccess(http.StatusOK, "Profile loaded", dto.NewUserProfile(user)))
}
