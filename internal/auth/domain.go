package auth

import "github.com/stocktrail/stocktrail/internal/users"

// Account is a user record as the authentication path sees it.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         users.Role
	Enabled      bool
}
