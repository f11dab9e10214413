package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bookreviewhub/backend/internal/auth"
	"github.com/bookreviewhub/backend/internal/config"
	"github.com/bookreviewhub/backend/internal/domain"
	"github.com/bookreviewhub/backend/internal/events"
	"github.com/bookreviewhub/backend/internal/repository"
	apperrors "github.com/bookreviewhub/backend/pkg/util"
)

const (
	msgUsernameTaken   = "Username is already taken"
	msgEmailRegistered = "Email is already registered"
	msgPasswordTooLong = "Password must be at most 72 bytes"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Username   string
	Password   string
	Email      string
	FirstName  string
	MiddleName *string
	LastName   string
}

// LoginInput carries credentials.
type LoginInput struct {
	Username string
	Password string
}

// Register creates a USER account in ACTIVE status.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return apperrors.NewInvalidArgument(msgUsernameTaken)
	}

	registered, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if registered {
		return apperrors.NewInvalidArgument(msgEmailRegistered)
	}

	if len(in.Password) > auth.MaxPasswordBytes {
		return apperrors.NewInvalidArgument(msgPasswordTooLong)
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		LastName:     in.LastName,
	}

	// The existence checks above race with concurrent registrations; the store's
	// uniqueness constraints decide the winner.
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return apperrors.NewInvalidArgument(msgUsernameTaken)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return apperrors.NewInvalidArgument(msgEmailRegistered)
		}
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	s.publish(ctx, events.NewUserEvent(events.EventUserRegistered, user, s.now(), events.UserRegisteredPayload{
		Email:     user.Email,
		FirstName: user.FirstName,
		Role:      user.Role,
	}))
	return nil
}

// Login verifies credentials and issues a signed token with its expiry.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.CompareDummy(in.Password, s.bcryptCost)
			return "", time.Time{}, apperrors.NewBadCredentials()
		}
		return "", time.Time{}, fmt.Errorf("load user: %w", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, in.Password); err != nil {
		return "", time.Time{}, apperrors.NewBadCredentials()
	}
	if !user.Active() {
		s.logger.Info("login refused for inactive account", zap.String("username", user.Username), zap.String("status", string(user.Status)))
		return "", time.Time{}, apperrors.NewBadCredentials()
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.publish(ctx, events.NewUserEvent(events.EventUserLoggedIn, user, now, events.UserLoggedInPayload{ExpiresAt: expiresAt}))
	return token, expiresAt, nil
}

// Profile returns the account with the given username.
func (s *AuthService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
