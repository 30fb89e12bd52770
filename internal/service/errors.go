package service

import (
	"errors"
	"fmt"

	"fsanano/stockroom/internal/repository"
)

var (
	// ErrNotAuthorized is returned by the Guard both for items the caller
	// does not own and for items that do not exist.
	ErrNotAuthorized = errors.New("not authorized")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidInput       = errors.New("invalid input")

	ErrUsernameTaken = fmt.Errorf("username already exists: %w", repository.ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", repository.ErrConflict)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
