package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the closed set of permission tiers.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// IsAllowed reports whether r is a member of the allowed set.
func (r Role) IsAllowed(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// User is the credential store document. Secret fields carry json:"-" so they
// can never leak into a response payload.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"` // bcrypt hash
	Role                 Role               `bson:"role" json:"role"`
	PasswordChangedAt    time.Time          `bson:"password_changed_at,omitempty" json:"-"`
	PasswordResetToken   string             `bson:"password_reset_token,omitempty" json:"-"` // sha256 hex of the raw token
	PasswordResetExpires time.Time          `bson:"password_reset_expires,omitempty" json:"-"`
	Active               bool               `bson:"active" json:"-"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ChangedPasswordAfter reports whether the password was changed after t.
// Tokens issued before the last password change must be rejected.
func (u *User) ChangedPasswordAfter(t time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return u.PasswordChangedAt.After(t)
}
