package middleware

import (
	"log/slog"
	"net/http"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// RBACMiddleware gates requests on the Permission Resolver's module:action
// check (spec.md §4.1, §4.2).
type RBACMiddleware struct {
	rbac   *service.RBACService
	logger *slog.Logger
}

// NewRBACMiddleware creates a new RBAC middleware.
func NewRBACMiddleware(rbac *service.RBACService, logger *slog.Logger) *RBACMiddleware {
	return &RBACMiddleware{rbac: rbac, logger: logger}
}

// Authorize requires the authenticated user to hold the given module:action
// permission.
func (m *RBACMiddleware) Authorize(module, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if GetUserRole(r.Context()) == string(domain.PrimaryRoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := m.rbac.HasPermission(r.Context(), *userID, module, action)
			if err != nil {
				m.logger.Error("failed to check permission", "user_id", *userID, "module", module, "action", action, "error", err)
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "failed to verify permissions")
				return
			}
			if !ok {
				m.logger.Warn("permission denied", "user_id", *userID, "module", module, "action", action)
				writeAuthError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeAny requires the user to hold at least one of the given
// module:action permissions.
func (m *RBACMiddleware) AuthorizeAny(pairs [][2]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if GetUserRole(r.Context()) == string(domain.PrimaryRoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}

			for _, pair := range pairs {
				ok, err := m.rbac.HasPermission(r.Context(), *userID, pair[0], pair[1])
				if err == nil && ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
		})
	}
}
