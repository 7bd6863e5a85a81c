// Package authz applies role-based access policies at the HTTP boundary.
// Core services stay role-agnostic; handlers compose these middlewares.
package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/stocktrail/stocktrail/internal/shared"
	"github.com/stocktrail/stocktrail/internal/users"
)

// Policy decides whether a user may perform a class of operations.
type Policy func(users.User) bool

// CanManageItems grants item creation, editing, activation toggles and the
// inactive listing.
func CanManageItems(u users.User) bool {
	return u.Role == users.RoleAdmin
}

// CanManageUsers grants user administration.
func CanManageUsers(u users.User) bool {
	return u.Role == users.RoleAdmin
}

// PrincipalSource resolves the user account behind a session.
type PrincipalSource interface {
	GetByID(ctx context.Context, id int64) (users.User, error)
}

// Middleware wires authentication and policy checks for HTTP handlers.
type Middleware struct {
	Source PrincipalSource
	Logger *slog.Logger
}

type userContextKey struct{}

// ContextWithUser stores the authenticated user in context.
func ContextWithUser(ctx context.Context, u users.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (users.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(users.User)
	return u, ok
}

// RequireUser ensures the request carries a session bound to an enabled user
// and attaches that user to the request context.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// Require ensures the authenticated user satisfies the given policy.
func (m Middleware) Require(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				user, ok = m.resolve(r)
				if !ok {
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
				r = r.WithContext(ContextWithUser(r.Context(), user))
			}
			if !policy(user) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) resolve(r *http.Request) (users.User, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return users.User{}, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return users.User{}, false
	}
	user, err := m.Source.GetByID(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Warn("resolve session user", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return users.User{}, false
	}
	if !user.Enabled {
		return users.User{}, false
	}
	return user, true
}
