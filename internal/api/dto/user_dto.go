package dto

import (
	"time"

	"github.com/bookreviewhub/backend/internal/domain"
)

// RegisterRequest payload for new users.
type RegisterRequest struct {
	Username   string  `json:"username" validate:"required,max=50"`
	Password   string  `json:"password" validate:"required,bcryptmax"`
	Email      string  `json:"email" validate:"required,email,max=100"`
	FirstName  string  `json:"firstName" validate:"required,max=50"`
	MiddleName *string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	LastName   string  `json:"lastName" validate:"required,max=50"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// UserProfile is the public view of an account.
type UserProfile struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	FirstName   string     `json:"firstName"`
	MiddleName  *string    `json:"middleName,omitempty"`
	LastName    string     `json:"lastName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// NewUserProfile maps a stored user to its public view.
func NewUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        string(user.Role),
		Status:      string(user.Status),
		FirstName:   user.FirstName,
		MiddleName:  user.MiddleName,
		LastName:    user.LastName,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}
