package model

import (
	"fmt"
	"time"
)

// User is a stored account. Accounts back the identities that callers present
// with their tokens.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	// Session is bumped on every password change. Tokens carrying an older
	// value are no longer accepted.
	Session      int        `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// Identity returns the caller identity of the account.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Role is a caller role.
type Role string

// Roles.
const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles on either side never match.
func RoleAtLeast(role, minimum Role) bool {
	levels := map[Role]int{
		RoleAdmin:   2,
		RoleStudent: 1,
	}
	have, ok := levels[role]
	if !ok {
		return false
	}
	need, ok := levels[minimum]
	if !ok {
		return false
	}
	return have >= need
}

// Identity is the already-authenticated caller of a workflow operation.
// The zero value is an anonymous viewer.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Anonymous reports whether the identity carries no account.
func (id Identity) Anonymous() bool {
	return id.ID == ""
}

// IsAdmin reports whether the identity has moderator authority.
func (id Identity) IsAdmin() bool {
	return !id.Anonymous() && id.Role == RoleAdmin
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a new password against the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
