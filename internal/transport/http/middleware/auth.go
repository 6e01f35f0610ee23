package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/glucotrack/api/internal/infrastructure/jwt"
)

type contextKey string

const userIDKey contextKey = "userID"

// accessVerifier is the slice of the token provider the middleware needs.
type accessVerifier interface {
	Verify(token string, kind jwtinfra.Kind) (string, error)
}

// Auth returns middleware that validates the Bearer access token and injects
// the subject user ID into the request context. Refresh tokens are rejected
// here; they are only good at the refresh endpoint.
func Auth(verifier accessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			userID, err := verifier.Verify(tokenStr, jwtinfra.KindAccess)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
