package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bookreviewhub/backend/internal/domain"
)

// memoryUserRepository keeps accounts in process memory. Uniqueness checks and the
// insert share one critical section, matching the guarantees of the SQL constraints.
type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.User
	now    func() time.Time
}

// NewMemoryUserRepository returns an in-memory implementation for local runs and tests.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		byID: make(map[int64]*domain.User),
		now:  time.Now,
	}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
	}
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	r.nextID++
	now := r.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(r.GetByUsername(ctx, username))
}

func (r *memoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(r.GetByEmail(ctx, email))
}

func (r *memoryUserRepository) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	loginAt := at
	user.LastLoginAt = &loginAt
	user.UpdatedAt = r.now()
	return nil
}

func (r *memoryUserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if match(user) {
			return cloneUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) exists(_ *domain.User, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if err == ErrNotFound {
		return false, nil
	}
	return false, err
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.MiddleName != nil {
		m := *u.MiddleName
		c.MiddleName = &m
	}
	if u.LastLoginAt != nil {
		l := *u.LastLoginAt
		c.LastLoginAt = &l
	}
	return &c
}
