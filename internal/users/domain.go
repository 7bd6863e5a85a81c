package users

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is the coarse-grained authorization level of a user account.
type Role string

const (
	// RoleAdmin may manage items, view the inactive list and administer users.
	RoleAdmin Role = "ADMIN"
	// RoleUser may view the dashboard and record movements.
	RoleUser Role = "USER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a user account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Enabled  bool   `json:"enabled"`
}

var (
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("users: username already exists")
	// ErrInvalidInput wraps field-level validation failures.
	ErrInvalidInput = errors.New("users: invalid input")
)

var usernameCaser = cases.Lower(language.Und)

// NormalizeUsername trims and lower-cases a username. Usernames are stored
// and compared in this form, making lookups case-insensitive.
func NormalizeUsername(username string) string {
	return usernameCaser.String(strings.TrimSpace(username))
}
