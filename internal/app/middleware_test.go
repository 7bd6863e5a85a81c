package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stocktrail/stocktrail/internal/shared"
)

func newTestStack(t *testing.T) (*chi.Mux, *shared.SessionManager, *shared.CSRFManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "stocktrail_session", time.Hour, false)
	csrf := shared.NewCSRFManager("csrf-secret")

	r := chi.NewRouter()
	r.Use(MiddlewareStack(MiddlewareConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		SessionManager: sessions,
		CSRFManager:    csrf,
	})...)
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }
	r.Post("/auth/login", ok)
	r.Post("/auth/login-reset", ok)
	r.Get("/items", ok)
	r.Post("/items", ok)
	return r, sessions, csrf
}

func TestCSRFMiddlewareExemptsLoginOnly(t *testing.T) {
	router, _, _ := newTestStack(t)

	// Login carries no token yet; the response hands one out.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Longer paths sharing the prefix are not exempt.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login-reset", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMiddlewareSkipsSafeMethods(t *testing.T) {
	router, _, _ := newTestStack(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCSRFMiddlewareAcceptsSessionToken(t *testing.T) {
	router, sessions, csrf := newTestStack(t)
	ctx := context.Background()

	// Seed a session holding a token, the way a login response would.
	sess, err := sessions.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	seed := httptest.NewRecorder()
	require.NoError(t, sessions.Commit(ctx, seed, sess))
	cookies := seed.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.AddCookie(cookies[0])
	req.Header.Set(shared.CSRFHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The same request without the header is rejected.
	bare := httptest.NewRequest(http.MethodPost, "/items", nil)
	bare.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bare)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
