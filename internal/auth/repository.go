package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktrail/stocktrail/internal/shared"
)

// Repository loads accounts for authentication.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// FindByUsername looks up an account. The caller is expected to pass a
// normalized (lower-cased) username; storage holds the same form.
func (r *repository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var acc Account
	err := r.pool.QueryRow(ctx, `SELECT user_id, username, password_hash, user_role, is_enabled FROM app_user WHERE username=$1`, username).
		Scan(&acc.ID, &acc.Username, &acc.PasswordHash, &acc.Role, &acc.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}
