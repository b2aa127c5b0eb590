package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bryanwahyu/mediscribe/internal/auth"
	"github.com/bryanwahyu/mediscribe/internal/domain/users"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// JWTAuth validates the Bearer token and resolves the requester identity.
// The token subject must exist in the user store: a valid signature over a
// deleted account is still unauthorized.
func JWTAuth(secret []byte, repo users.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for health check
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := auth.Verify(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			if repo != nil {
				if _, err := repo.Get(r.Context(), users.UserID(claims.Sub)); err != nil {
					http.Error(w, "unknown user", http.StatusUnauthorized)
					return
				}
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user id from context
func GetUserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
