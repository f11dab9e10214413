package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bookreviewhub/backend/internal/domain"
)

// RequireAuthenticated rejects requests that reached a protected route without an identity.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromFiber(c); !ok {
			return reject(c, http.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role.Authority()] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromFiber(c)
		if !ok {
			return reject(c, http.StatusUnauthorized, "Unauthorized")
		}
		for _, authority := range identity.Authorities {
			if _, exists := allowedSet[authority]; exists {
				return c.Next()
			}
		}
		return reject(c, http.StatusForbidden, "Access Denied")
	}
}

func reject(c *fiber.Ctx, status int, reason string) error {
	return c.Status(status).JSON(fiber.Map{"error": reason})
}
