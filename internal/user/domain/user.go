// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentimeter/sentimeter/internal/errors"
)

// User represents a registered account. Email is the unique identifier and
// the token subject; Password holds the argon2id hash, never the plain text.
type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
