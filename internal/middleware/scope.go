package middleware

import (
	"context"
	"net/http"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// cityScopeKey carries the resolved CityScope for the current request's
// permission, so handlers can inject it into a report/list query without
// re-resolving it themselves (spec.md §4.2 steps 2-4).
const cityScopeKey contextKey = "city_scope"

// ScopeMiddleware resolves and attaches the caller's city scope for a given
// permission ahead of a handler that needs it.
type ScopeMiddleware struct {
	scope *service.ScopeService
}

// NewScopeMiddleware creates a new scope middleware.
func NewScopeMiddleware(scope *service.ScopeService) *ScopeMiddleware {
	return &ScopeMiddleware{scope: scope}
}

// Inject resolves the city scope for module:action and stores it in the
// request context ahead of the handler. An admin always sees every city
// regardless of any user_city_access rows on file (spec.md §3 invariant 7),
// so admins short-circuit straight to an unnarrowed CityScope. A non-admin
// whose resolved scope is empty is rejected with 403.
func (m *ScopeMiddleware) Inject(module, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			var scope domain.CityScope
			if GetUserRole(r.Context()) == string(domain.PrimaryRoleAdmin) {
				scope = domain.CityScope{All: true}
			} else {
				resolved, err := m.scope.ResolveCityScope(r.Context(), *userID, module, action)
				if err != nil {
					writeAuthError(w, http.StatusInternalServerError, "internal_error", "failed to resolve scope")
					return
				}
				scope = resolved
			}
			if !scope.All && len(scope.Cities) == 0 {
				writeAuthError(w, http.StatusForbidden, "forbidden", "no city access assigned")
				return
			}

			ctx := context.WithValue(r.Context(), cityScopeKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCityScope retrieves the scope a prior Inject call attached to the
// request context.
func GetCityScope(ctx context.Context) (domain.CityScope, bool) {
	scope, ok := ctx.Value(cityScopeKey).(domain.CityScope)
	return scope, ok
}
