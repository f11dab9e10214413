package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when the username is already stored.
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrDuplicateEmail is returned when the email is already stored.
	ErrDuplicateEmail = errors.New("duplicate email")
)
