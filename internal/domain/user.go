// Package domain contains the core domain models for attendance-core.
package domain

import "time"

// PrimaryRole is the coarse role label carried on a user record, distinct
// from the fine-grained Role/Permission graph used for authorization.
type PrimaryRole string

const (
	PrimaryRoleAdmin      PrimaryRole = "admin"
	PrimaryRoleSupervisor PrimaryRole = "supervisor"
	PrimaryRoleUser       PrimaryRole = "user"
	PrimaryRoleOperator   PrimaryRole = "operator"
	PrimaryRoleManager    PrimaryRole = "manager"
	PrimaryRoleCustom     PrimaryRole = "custom"
)

// User represents an account holder: an admin, supervisor, or any other
// staff member who authenticates against the API (as distinct from an
// Employee, who is punched in/out but never logs in).
type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	EmpCode      string      `json:"emp_code,omitempty"`
	Email        string      `json:"email,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	PrimaryRole  PrimaryRole `json:"primary_role"`
	Department   string      `json:"department,omitempty"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// UserInput is the payload accepted for user creation/update; PasswordHash
// is derived from a plaintext Password field by the service layer, never
// accepted directly over the wire.
type UserInput struct {
	Name        string      `json:"name"`
	EmpCode     string      `json:"emp_code,omitempty"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	PrimaryRole PrimaryRole `json:"primary_role"`
	Department  string      `json:"department,omitempty"`
	Password    string      `json:"password,omitempty"`
}

// UserWithAccess bundles a user with the authorization profile returned by
// /auth/me and /auth/login.
type UserWithAccess struct {
	User        User     `json:"user"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}
