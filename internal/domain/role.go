package domain

import "time"

// Role groups a named set of permissions. System roles are seeded at
// bootstrap and cannot be edited or deleted (invariant spec.md §3).
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleInput is the payload for creating/updating a role.
type RoleInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleWithPermissions bundles a role with the permissions currently
// attached to it, as returned by the RBAC read endpoints.
type RoleWithPermissions struct {
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// BuiltinRoles defines the roles seeded at bootstrap. Every deployment
// starts with these four; "custom" roles created later are never marked
// IsSystem and remain editable.
var BuiltinRoles = []Role{
	{Name: "admin", Description: "Full access to all modules and cities", IsSystem: true},
	{Name: "supervisor", Description: "Ward-scoped attendance management", IsSystem: true},
	{Name: "operator", Description: "Punch recording for assigned wards", IsSystem: true},
	{Name: "manager", Description: "Read-only reporting across assigned cities", IsSystem: true},
}
