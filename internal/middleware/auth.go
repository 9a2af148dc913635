package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/apricitydigital/attendance-core/internal/token"
	"github.com/rs/zerolog"
)

// userIDKey and userRoleKey are the context keys the auth middleware
// populates from a verified JWT.
const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "user_role"
)

// Auth validates the bearer JWT on every request, extracted from the
// "token" cookie, the Authorization header, the "x-access-token" header,
// or the "token" query parameter, in that order — the first non-empty
// value wins (spec.md §4.2 step 1).
func Auth(issuer *token.Issuer, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractToken(r)
			if raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing_token", "authentication token is required")
				return
			}

			claims, err := issuer.Verify(raw)
			if err != nil {
				logger.Warn().Err(err).Msg("token verification failed")
				writeAuthError(w, http.StatusForbidden, "invalid_token", "authentication token is invalid or expired")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userRoleKey, claims.Role)

			logger.Debug().Int64("user_id", claims.UserID).Str("role", claims.Role).Msg("request authenticated")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if header := r.Header.Get("x-access-token"); header != "" {
		return header
	}
	return r.URL.Query().Get("token")
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

// GetUserID extracts the authenticated user's id from context.
func GetUserID(ctx context.Context) *int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return &id
	}
	return nil
}

// GetUserRole extracts the authenticated user's role from context.
func GetUserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}
