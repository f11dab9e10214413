package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookreviewhub/backend/internal/api/http/handlers"
	"github.com/bookreviewhub/backend/internal/auth"
	"github.com/bookreviewhub/backend/internal/domain"
)

// PublicPrefixes are served without token inspection.
var PublicPrefixes = []string{"/api/auth/", "/health/"}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	health := app.Group("/health")
	health.Get("/live", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api.Get("/users/me", auth.RequireAuthenticated(), cfg.Users.Me)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin, domain.RoleModerator))
	admin.Get("/users/:username", cfg.Users.GetUser)
}
