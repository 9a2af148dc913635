package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/apricitydigital/attendance-core/internal/apperr"
	"github.com/apricitydigital/attendance-core/internal/database"
	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/repository"
)

// permissionVersionKey is the Redis counter bumped on every RBAC mutation
// (role/permission grant or revoke). The Permission Resolver's cache entries
// carry the version they were computed at; a mismatch against the current
// counter value is the cache-invalidation signal, not a wall-clock TTL
// (spec.md §4.1, §5 concurrency model).
const permissionVersionKey = "rbac:permission_version"

// cachedPermissions is one user's memoized resolution, tagged with the
// global version it was computed against.
type cachedPermissions struct {
	version int64
	result  domain.ResolvedPermissions
}

// RBACService resolves a user's effective permissions and city scopes by
// combining their role memberships and direct per-user grants, and exposes
// the role/permission administration operations (spec.md §4.1, §2).
type RBACService struct {
	roleRepo *repository.RoleRepository
	userRepo *repository.UserRepository
	redis    *database.Redis
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[int64]cachedPermissions
}

// NewRBACService creates a new RBAC service.
func NewRBACService(roleRepo *repository.RoleRepository, userRepo *repository.UserRepository, redis *database.Redis, logger *slog.Logger) *RBACService {
	return &RBACService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		redis:    redis,
		logger:   logger,
		cache:    make(map[int64]cachedPermissions),
	}
}

// currentVersion reads the global permission-cache version, treating an
// absent Redis key (or an unreachable Redis) as version 0 — resolution
// still works, it simply never short-circuits through the cache.
func (s *RBACService) currentVersion(ctx context.Context) int64 {
	if s.redis == nil || s.redis.Client == nil {
		return 0
	}
	v, err := s.redis.Client.Get(ctx, permissionVersionKey).Int64()
	if err != nil {
		return 0
	}
	return v
}

// bumpVersion invalidates every cached resolution by advancing the global
// version counter past whatever any cache entry was stamped with.
func (s *RBACService) bumpVersion(ctx context.Context) {
	if s.redis == nil || s.redis.Client == nil {
		s.mu.Lock()
		s.cache = make(map[int64]cachedPermissions)
		s.mu.Unlock()
		return
	}
	if _, err := s.redis.Client.Incr(ctx, permissionVersionKey).Result(); err != nil {
		s.logger.Warn("failed to bump permission version, clearing local cache instead", "error", err)
		s.mu.Lock()
		s.cache = make(map[int64]cachedPermissions)
		s.mu.Unlock()
	}
}

// Resolve returns a user's effective permission set and per-permission city
// scopes, serving from cache when the global version hasn't advanced since
// it was computed.
func (s *RBACService) Resolve(ctx context.Context, userID int64) (domain.ResolvedPermissions, error) {
	version := s.currentVersion(ctx)

	s.mu.RLock()
	entry, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok && entry.version == version {
		return entry.result, nil
	}

	rows, err := s.roleRepo.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return domain.ResolvedPermissions{}, fmt.Errorf("resolve user permissions: %w", err)
	}

	result := domain.ResolvedPermissions{
		PermSet: make(map[string]struct{}),
		CityMap: make(map[string]domain.CityScope),
	}
	for _, row := range rows {
		key := domain.PermissionKey(row.Module, row.Action)
		result.PermSet[key] = struct{}{}

		scope, exists := result.CityMap[key]
		if !exists {
			scope = domain.NewCityScope()
		}
		if !scope.All {
			scope.Add(row.CityID)
		}
		result.CityMap[key] = scope
	}

	s.mu.Lock()
	s.cache[userID] = cachedPermissions{version: version, result: result}
	s.mu.Unlock()

	return result, nil
}

// HasPermission reports whether a user's resolved permission set contains
// the given module:action key.
func (s *RBACService) HasPermission(ctx context.Context, userID int64, module, action string) (bool, error) {
	resolved, err := s.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return resolved.Has(module, action), nil
}

// CityScopeFor returns the city scope a user's permission grants for a
// module:action, defaulting to an empty (deny-all) scope if they lack the
// permission entirely.
func (s *RBACService) CityScopeFor(ctx context.Context, userID int64, module, action string) (domain.CityScope, error) {
	resolved, err := s.Resolve(ctx, userID)
	if err != nil {
		return domain.CityScope{}, err
	}
	return resolved.ScopeFor(module, action), nil
}

// CreateRole creates a new custom role.
func (s *RBACService) CreateRole(ctx context.Context, input domain.RoleInput) (*domain.Role, error) {
	role := &domain.Role{Name: input.Name, Description: input.Description}
	if err := s.roleRepo.CreateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}
	return role, nil
}

// ListRoles returns every role.
func (s *RBACService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roleRepo.ListRoles(ctx)
}

// ListPermissions returns every known permission.
func (s *RBACService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.roleRepo.ListPermissions(ctx)
}

// GrantRolePermission attaches a permission to a role and invalidates the
// permission cache for every affected user.
func (s *RBACService) GrantRolePermission(ctx context.Context, roleID, permissionID int64) error {
	if err := s.roleRepo.GrantRolePermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

// RevokeRolePermission detaches a permission from a role.
func (s *RBACService) RevokeRolePermission(ctx context.Context, roleID, permissionID int64) error {
	if err := s.roleRepo.RevokeRolePermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	s.bumpVersion(ctx)
	return nil
}

// AssignUserRole assigns a role to a user.
func (s *RBACService) AssignUserRole(ctx context.Context, userID, roleID int64, assignedBy *int64) error {
	if err := s.roleRepo.AssignUserRole(ctx, &domain.UserRole{UserID: userID, RoleID: roleID, AssignedBy: assignedBy}); err != nil {
		return fmt.Errorf("assign user role: %w", err)
	}
	s.bumpVersion(ctx)
	return nil
}

// RevokeUserRole removes a role from a user.
func (s *RBACService) RevokeUserRole(ctx context.Context, userID, roleID int64) error {
	if err := s.roleRepo.RevokeUserRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("revoke user role: %w", err)
	}
	s.bumpVersion(ctx)
	return nil
}

// GrantUserPermission grants a user a direct, optionally city-scoped
// permission.
func (s *RBACService) GrantUserPermission(ctx context.Context, userID, permissionID int64, cityID *int64) error {
	if err := s.roleRepo.GrantUserPermission(ctx, &domain.UserPermission{UserID: userID, PermissionID: permissionID, CityID: cityID}); err != nil {
		return fmt.Errorf("grant user permission: %w", err)
	}
	s.bumpVersion(ctx)
	return nil
}

// RevokeUserPermission removes a direct user permission grant.
func (s *RBACService) RevokeUserPermission(ctx context.Context, id int64) error {
	if err := s.roleRepo.RevokeUserPermission(ctx, id); err != nil {
		return fmt.Errorf("revoke user permission: %w", err)
	}
	s.bumpVersion(ctx)
	return nil
}

// GetUserWithAccess returns a user along with their resolved role names and
// permission keys, for profile/admin views.
func (s *RBACService) GetUserWithAccess(ctx context.Context, userID int64) (*domain.UserWithAccess, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	roles, err := s.roleRepo.ListUserRoleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}

	resolved, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	permissions := make([]string, 0, len(resolved.PermSet))
	for k := range resolved.PermSet {
		permissions = append(permissions, k)
	}

	return &domain.UserWithAccess{User: *user, Roles: roles, Permissions: permissions}, nil
}

// SeedBuiltinRoles ensures the builtin roles exist.
func (s *RBACService) SeedBuiltinRoles(ctx context.Context) error {
	return s.roleRepo.SeedBuiltinRoles(ctx)
}

// GetRole fetches a single role by id.
func (s *RBACService) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	return s.roleRepo.GetRole(ctx, id)
}

// UpdateRole renames/redescribes a custom role. System roles are seeded at
// bootstrap and cannot be edited (spec.md §3 invariant).
func (s *RBACService) UpdateRole(ctx context.Context, id int64, input domain.RoleInput) (*domain.Role, error) {
	role, err := s.roleRepo.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	if role == nil {
		return nil, apperr.NotFound("role_not_found", "role not found")
	}
	if role.IsSystem {
		return nil, apperr.Forbidden("system_role_immutable", "system roles cannot be edited")
	}

	role.Name = input.Name
	role.Description = input.Description
	if err := s.roleRepo.UpdateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	s.bumpVersion(ctx)
	return role, nil
}

// DeleteRole removes a custom role. System roles cannot be deleted.
func (s *RBACService) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.roleRepo.GetRole(ctx, id)
	if err != nil {
		return fmt.Errorf("get role: %w", err)
	}
	if role == nil {
		return apperr.NotFound("role_not_found", "role not found")
	}
	if role.IsSystem {
		return apperr.Forbidden("system_role_immutable", "system roles cannot be deleted")
	}

	if err := s.roleRepo.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	s.bumpVersion(ctx)
	return nil
}

// GetUserRoleNames returns the names of every role assigned to a user.
func (s *RBACService) GetUserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	return s.roleRepo.ListUserRoleNames(ctx, userID)
}

// GetUserPermissionKeys returns the "module:action" keys a user holds,
// through roles and direct grants combined.
func (s *RBACService) GetUserPermissionKeys(ctx context.Context, userID int64) ([]string, error) {
	resolved, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(resolved.PermSet))
	for k := range resolved.PermSet {
		keys = append(keys, k)
	}
	return keys, nil
}
