package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookreviewhub/backend/internal/domain"
	"github.com/bookreviewhub/backend/internal/repository"
)

type redisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// cachedIdentity is the subset of a user needed to authorize a request.
// The password hash never leaves the database.
type cachedIdentity struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Role     domain.Role       `json:"role"`
	Status   domain.UserStatus `json:"status"`
}

// IdentityCache resolves token subjects, reading through Redis before the user store.
type IdentityCache struct {
	store  redisStore
	users  repository.UserRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewIdentityCache builds the loader. A nil client or non-positive ttl disables caching.
func NewIdentityCache(client *redis.Client, users repository.UserRepository, ttl time.Duration, logger *zap.Logger) *IdentityCache {
	c := &IdentityCache{users: users, ttl: ttl, logger: logger}
	if client != nil && ttl > 0 {
		c.store = client
	}
	return c
}

func keyByUsername(username string) string { return fmt.Sprintf("auth:identity:%s", username) }

// LoadByUsername returns the account for username or repository.ErrNotFound.
func (c *IdentityCache) LoadByUsername(ctx context.Context, username string) (*domain.User, error) {
	if c.store != nil {
		if user, ok := c.get(ctx, username); ok {
			return user, nil
		}
	}

	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		c.set(ctx, user)
	}
	return user, nil
}

func (c *IdentityCache) get(ctx context.Context, username string) (*domain.User, bool) {
	raw, err := c.store.Get(ctx, keyByUsername(username)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("identity cache read failed", zap.String("username", username), zap.Error(err))
		}
		return nil, false
	}

	var cached cachedIdentity
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("identity cache entry corrupt", zap.String("username", username), zap.Error(err))
		return nil, false
	}
	return &domain.User{
		ID:       cached.ID,
		Username: cached.Username,
		Role:     cached.Role,
		Status:   cached.Status,
	}, true
}

func (c *IdentityCache) set(ctx context.Context, user *domain.User) {
	b, err := json.Marshal(cachedIdentity{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Status:   user.Status,
	})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, keyByUsername(user.Username), b, c.ttl).Err(); err != nil {
		c.logger.Warn("identity cache write failed", zap.String("username", user.Username), zap.Error(err))
	}
}
