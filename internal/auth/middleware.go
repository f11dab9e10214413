package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bookreviewhub/backend/internal/domain"
	"github.com/bookreviewhub/backend/internal/repository"
	apperrors "github.com/bookreviewhub/backend/pkg/util"
)

const bearerPrefix = "Bearer "

// IdentityLoader resolves the account named by a token subject.
type IdentityLoader interface {
	LoadByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and attaches the caller identity.
type AuthMiddleware struct {
	tokens *TokenManager
	users  IdentityLoader
	logger *zap.Logger
	exempt []string
}

// NewAuthMiddleware constructs middleware. Paths starting with any of the exempt
// prefixes are passed through untouched.
func NewAuthMiddleware(tokens *TokenManager, users IdentityLoader, logger *zap.Logger, exempt ...string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger, exempt: exempt}
}

// Handle runs once per request before route dispatch.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if m.isExempt(c.Path()) {
		return c.Next()
	}
	if _, ok := IdentityFromFiber(c); ok {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return c.Next()
	}
	token := authHeader[len(bearerPrefix):]

	username, err := m.tokens.ExtractUsername(token)
	if err != nil {
		m.logger.Debug("rejecting unparsable token", zap.Error(err))
		return reject(c, http.StatusUnauthorized, "Invalid JWT token")
	}

	ctx := c.UserContext()
	user, err := m.users.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reject(c, http.StatusUnauthorized, "Invalid or expired JWT token")
		}
		return apperrors.NewInternalError(err)
	}

	if err := m.tokens.Validate(token, user); err != nil {
		m.logger.Debug("rejecting token", zap.String("username", username), zap.Error(err))
		return reject(c, http.StatusUnauthorized, "Invalid or expired JWT token")
	}

	c.SetUserContext(WithIdentity(ctx, domain.NewIdentity(user)))
	return c.Next()
}

func (m *AuthMiddleware) isExempt(path string) bool {
	for _, prefix := range m.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
