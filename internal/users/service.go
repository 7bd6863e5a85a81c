package users

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Create(ctx context.Context, username, passwordHash string, role Role) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]User, error)
}

// Service handles user account business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields for a new user account.
type CreateInput struct {
	Username string
	Password string
	Role     Role
}

// CreateUser validates the input, hashes the password and persists a new
// enabled account. The username is stored lower-cased.
func (s *Service) CreateUser(ctx context.Context, input CreateInput) (int64, error) {
	username := NormalizeUsername(input.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return 0, fmt.Errorf("%w: username must be 3-50 characters", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Password) == "" {
		return 0, fmt.Errorf("%w: password must not be blank", ErrInvalidInput)
	}
	if !input.Role.Valid() {
		return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.repo.Create(ctx, username, string(hash), input.Role)
}

// GetByID loads one user.
func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
