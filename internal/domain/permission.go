package domain

import (
	"fmt"
	"strings"
	"time"
)

// Permission is a single grantable (module, action) pair, e.g. module
// "attendance" action "punch", unique on the lower-cased pair.
type Permission struct {
	ID          int64  `json:"id"`
	Module      string `json:"module"`
	Action      string `json:"action"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// Key returns the canonical "module:action" string used throughout the
// permission resolver, scope cache, and middleware chain.
func (p Permission) Key() string {
	return PermissionKey(p.Module, p.Action)
}

// PermissionKey builds the canonical "module:action" string, lower-casing
// both parts per spec.md §3's "unique on (module, action) lower-case".
func PermissionKey(module, action string) string {
	return fmt.Sprintf("%s:%s", strings.ToLower(module), strings.ToLower(action))
}

// PermissionInput is the payload for creating a permission.
type PermissionInput struct {
	Module      string `json:"module"`
	Action      string `json:"action"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// RolePermission is the edge role -> permission.
type RolePermission struct {
	RoleID       int64 `json:"role_id"`
	PermissionID int64 `json:"permission_id"`
}

// UserRole is the edge user -> role, audited with who granted it and when.
type UserRole struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	RoleID     int64     `json:"role_id"`
	AssignedAt time.Time `json:"assigned_at"`
	AssignedBy *int64    `json:"assigned_by,omitempty"`
}

// UserPermission is a direct grant user -> permission, optionally qualified
// by city. A nil CityID means the grant applies to all cities for that
// permission (spec.md §3 invariant 7).
type UserPermission struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PermissionID int64     `json:"permission_id"`
	CityID       *int64    `json:"city_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CityScope describes the set of cities a single permission grants a user
// view over: either every city (All), or the explicit union in Cities.
type CityScope struct {
	All    bool
	Cities map[int64]struct{}
}

// NewCityScope returns an empty, non-all scope ready for union.
func NewCityScope() CityScope {
	return CityScope{Cities: make(map[int64]struct{})}
}

// Add merges a single grant row into the scope: a nil cityID collapses the
// whole scope to All per spec.md §3 invariant 7.
func (s *CityScope) Add(cityID *int64) {
	if s.All {
		return
	}
	if cityID == nil {
		s.All = true
		s.Cities = nil
		return
	}
	s.Cities[*cityID] = struct{}{}
}

// Contains reports whether cityID is within scope.
func (s CityScope) Contains(cityID int64) bool {
	if s.All {
		return true
	}
	_, ok := s.Cities[cityID]
	return ok
}

// IDs returns the explicit city id list; meaningless when All is true.
func (s CityScope) IDs() []int64 {
	ids := make([]int64, 0, len(s.Cities))
	for id := range s.Cities {
		ids = append(ids, id)
	}
	return ids
}

// ResolvedPermissions is the output of the Permission Resolver (spec.md
// §4.1): the set of "module:action" keys the user holds, plus the city
// scope attached to each one.
type ResolvedPermissions struct {
	PermSet map[string]struct{}
	CityMap map[string]CityScope
}

// Has reports whether the resolved set grants (module, action).
func (r ResolvedPermissions) Has(module, action string) bool {
	_, ok := r.PermSet[PermissionKey(module, action)]
	return ok
}

// ScopeFor returns the city scope attached to (module, action), or an
// empty, non-all scope if the permission was never granted.
func (r ResolvedPermissions) ScopeFor(module, action string) CityScope {
	if s, ok := r.CityMap[PermissionKey(module, action)]; ok {
		return s
	}
	return NewCityScope()
}
