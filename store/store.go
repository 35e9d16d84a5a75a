// Package store is the credential store boundary. Implementations persist
// user records as single-document atomic writes; there are no multi-document
// transactions and concurrent updates are last-write-wins.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/avelar-dev/go-tours/models"
)

var (
	// ErrNotFound is returned when no matching, active user exists.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore persists user records. Lookups never return deactivated users.
type UserStore interface {
	// Create inserts a new user. The caller supplies the password hash;
	// plaintext never crosses this boundary.
	Create(ctx context.Context, user *models.User) error

	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByResetToken looks up the user whose stored reset token hash
	// matches and whose reset window has not expired.
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)

	// SetResetToken stores the hash and expiry of a freshly issued reset
	// token on the user record.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	// ClearResetToken removes any reset token state. Used both when a token
	// is consumed and as the compensating write when mail delivery fails.
	ClearResetToken(ctx context.Context, id string) error

	// UpdatePassword stores a new password hash, bumps the password-changed
	// timestamp and clears reset token state in one write.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateProfile updates the allow-listed profile fields. Empty values
	// leave the field unchanged.
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)

	// Deactivate soft-deletes the user. The record stays in the store but
	// disappears from every lookup.
	Deactivate(ctx context.Context, id string) error

	List(ctx context.Context) ([]models.User, error)
}
