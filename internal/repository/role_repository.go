package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// RoleRepository persists roles, permissions, and the edges (role<->permission,
// user<->role, user<->permission) that the Permission Resolver (spec.md §4.1)
// reads at cache-fill time.
type RoleRepository struct {
	db *sql.DB
}

// NewRoleRepository creates a new role repository.
func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// CreateRole inserts a new role.
func (r *RoleRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (name, description, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, role.Name, role.Description, role.IsSystem).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func scanRole(row rowScanner) (*domain.Role, error) {
	var role domain.Role
	var description sql.NullString
	err := row.Scan(&role.ID, &role.Name, &description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan role: %w", err)
	}
	role.Description = description.String
	return &role, nil
}

// GetRole retrieves a role by ID.
func (r *RoleRepository) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	query := `SELECT id, name, description, is_system, created_at, updated_at FROM roles WHERE id = $1`
	return scanRole(r.db.QueryRowContext(ctx, query, id))
}

// GetRoleByName retrieves a role by its unique name.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	query := `SELECT id, name, description, is_system, created_at, updated_at FROM roles WHERE name = $1`
	return scanRole(r.db.QueryRowContext(ctx, query, name))
}

// ListRoles retrieves every role.
func (r *RoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	query := `SELECT id, name, description, is_system, created_at, updated_at FROM roles ORDER BY is_system DESC, name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, rows.Err()
}

// UpdateRole updates a non-system role's name/description.
func (r *RoleRepository) UpdateRole(ctx context.Context, role *domain.Role) error {
	query := `UPDATE roles SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 AND is_system = false`
	result, err := r.db.ExecContext(ctx, query, role.ID, role.Name, role.Description)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("role not found or is a system role")
	}
	return nil
}

// DeleteRole removes a non-system role.
func (r *RoleRepository) DeleteRole(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1 AND is_system = false`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("role not found or is a system role")
	}
	return nil
}

// SeedBuiltinRoles ensures the builtin roles exist.
func (r *RoleRepository) SeedBuiltinRoles(ctx context.Context) error {
	for _, role := range domain.BuiltinRoles {
		query := `
			INSERT INTO roles (name, description, is_system, created_at, updated_at)
			VALUES ($1, $2, true, NOW(), NOW())
			ON CONFLICT (name) DO NOTHING`
		if _, err := r.db.ExecContext(ctx, query, role.Name, role.Description); err != nil {
			return fmt.Errorf("seed builtin role %s: %w", role.Name, err)
		}
	}
	return nil
}

// CreatePermission inserts a new permission.
func (r *RoleRepository) CreatePermission(ctx context.Context, p *domain.Permission) error {
	query := `
		INSERT INTO permissions (module, action, label, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.Module, p.Action, p.Label, p.Description).Scan(&p.ID)
}

// ListPermissions retrieves every known permission.
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	query := `SELECT id, module, action, label, description FROM permissions ORDER BY module, action`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query permissions: %w", err)
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		var label, description sql.NullString
		if err := rows.Scan(&p.ID, &p.Module, &p.Action, &label, &description); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		p.Label = label.String
		p.Description = description.String
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GrantRolePermission attaches a permission to a role.
func (r *RoleRepository) GrantRolePermission(ctx context.Context, roleID, permissionID int64) error {
	query := `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("grant role permission: %w", err)
	}
	return nil
}

// RevokeRolePermission detaches a permission from a role.
func (r *RoleRepository) RevokeRolePermission(ctx context.Context, roleID, permissionID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("revoke role permission: %w", err)
	}
	return nil
}

// AssignUserRole attaches a role to a user.
func (r *RoleRepository) AssignUserRole(ctx context.Context, ur *domain.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, role_id, assigned_at, assigned_by)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (user_id, role_id) DO NOTHING
		RETURNING id, assigned_at`
	err := r.db.QueryRowContext(ctx, query, ur.UserID, ur.RoleID, nullableInt64(ur.AssignedBy)).Scan(&ur.ID, &ur.AssignedAt)
	if err == sql.ErrNoRows {
		// Conflict hit DO NOTHING; the assignment already existed.
		return nil
	}
	if err != nil {
		return fmt.Errorf("assign user role: %w", err)
	}
	return nil
}

// RevokeUserRole detaches a role from a user.
func (r *RoleRepository) RevokeUserRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return fmt.Errorf("revoke user role: %w", err)
	}
	return nil
}

// ListUserRoleNames returns the names of every role assigned to a user.
func (r *RoleRepository) ListUserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user role names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// rolePermissionRow is one (module, action, city_id) row contributed either
// by a role the user holds, or a direct per-user grant.
type rolePermissionRow struct {
	Module string
	Action string
	CityID *int64
}

// ResolveUserPermissions loads every permission reachable by a user through
// their roles plus any direct user_permissions grants, each tagged with its
// (possibly nil/all-cities) city scope row — the Permission Resolver's raw
// input before aggregation (spec.md §4.1).
func (r *RoleRepository) ResolveUserPermissions(ctx context.Context, userID int64) ([]rolePermissionRow, error) {
	query := `
		SELECT p.module, p.action, NULL::bigint AS city_id
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		UNION ALL
		SELECT p.module, p.action, up.city_id
		FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user permissions: %w", err)
	}
	defer rows.Close()

	var out []rolePermissionRow
	for rows.Next() {
		var row rolePermissionRow
		var cityID sql.NullInt64
		if err := rows.Scan(&row.Module, &row.Action, &cityID); err != nil {
			return nil, fmt.Errorf("scan permission row: %w", err)
		}
		if cityID.Valid {
			row.CityID = &cityID.Int64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GrantUserPermission grants a user a permission, optionally scoped to a
// single city (nil city_id means all cities, spec.md §3 invariant 7).
func (r *RoleRepository) GrantUserPermission(ctx context.Context, up *domain.UserPermission) error {
	query := `
		INSERT INTO user_permissions (user_id, permission_id, city_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, up.UserID, up.PermissionID, nullableInt64(up.CityID)).Scan(&up.ID, &up.CreatedAt)
}

// RevokeUserPermission removes a direct user permission grant.
func (r *RoleRepository) RevokeUserPermission(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_permissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("revoke user permission: %w", err)
	}
	return nil
}
