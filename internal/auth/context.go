package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/bookreviewhub/backend/internal/domain"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}

// IdentityFromFiber reads the identity from the request's user context.
func IdentityFromFiber(c *fiber.Ctx) (*domain.Identity, bool) {
	return IdentityFromContext(c.UserContext())
}
