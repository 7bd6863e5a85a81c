package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktrail/stocktrail/internal/shared"
)

// Repository persists user accounts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new user and returns its assigned id. A storage-level
// uniqueness violation on the username surfaces as ErrDuplicateUsername.
func (r *Repository) Create(ctx context.Context, username, passwordHash string, role Role) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO app_user (username, password_hash, user_role, is_enabled)
VALUES ($1, $2, $3, TRUE) RETURNING user_id`, username, passwordHash, string(role)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return id, nil
}

// GetByID loads a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `SELECT user_id, username, user_role, is_enabled FROM app_user WHERE user_id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Role, &u.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// ExistsByUsername reports whether a user with the given username exists.
// The username is expected to be normalized already.
func (r *Repository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_user WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

// List returns all user accounts ordered by username.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, username, user_role, is_enabled FROM app_user ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.Enabled); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
