package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type contextKey string

const userKey contextKey = "current_user"

// currentUser returns the authenticated user placed in the context by
// requireAuth. The bool is false on unauthenticated routes.
func currentUser(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}

// requireAuth verifies the bearer token and resolves it to a stored user.
// A missing, malformed, expired or orphaned token all produce the same 401
// so the response never reveals which check failed.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeUnauthorized(w, "could not validate credentials")
			return
		}

		email, err := s.tokens.Verify(token)
		if err != nil {
			writeUnauthorized(w, "could not validate credentials")
			return
		}

		user, err := s.storage.UserByEmail(r.Context(), email)
		if errors.Is(err, storage.ErrNotFound) {
			writeUnauthorized(w, "could not validate credentials")
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
