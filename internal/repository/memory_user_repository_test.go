package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreviewhub/backend/internal/domain"
)

func newUser(username, email string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		FirstName:    "A",
		LastName:     "L",
	}
}

func TestMemoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := newUser("alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byEmail.Username)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, newUser("alice", "a@x.com")))

	err := repo.Create(ctx, newUser("alice", "other@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	err = repo.Create(ctx, newUser("alice2", "a@x.com"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryExists(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, newUser("alice", "a@x.com")))

	ok, err := repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, newUser("alice", "a@x.com")))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	got.Role = domain.RoleAdmin

	again, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestMemoryUpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user := newUser("alice", "a@x.com")
	require.NoError(t, repo.Create(ctx, user))

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, 999, at), ErrNotFound)
}

func TestMemoryConcurrentRegistrationSameUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(ctx, newUser("alice", fmt.Sprintf("a%d@x.com", i)))
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch err {
		case nil:
			ok++
		case ErrDuplicateUsername:
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dup)
}

func TestMemoryUsernameClashReportedFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, newUser("alice", "a@x.com")))
	require.NoError(t, repo.Create(ctx, newUser("bob", "b@x.com")))

	for i := 0; i < 50; i++ {
		err := repo.Create(ctx, newUser("alice", "b@x.com"))
		require.ErrorIs(t, err, ErrDuplicateUsername)
	}
}
