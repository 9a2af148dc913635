package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/service"
	"github.com/go-chi/chi/v5"
)

// RoleHandler handles role and RBAC administration endpoints (spec.md §4.1,
// §2's role/permission model).
type RoleHandler struct {
	rbacService *service.RBACService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(rbacService *service.RBACService) *RoleHandler {
	return &RoleHandler{rbacService: rbacService}
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}

// ListRoles lists every role.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.rbacService.ListRoles(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"roles": roles})
}

// ListPermissions lists every known permission.
func (h *RoleHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.rbacService.ListPermissions(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{"permissions": permissions})
}

// GetRole retrieves a role by id.
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid role id")
		return
	}

	role, err := h.rbacService.GetRole(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if role == nil {
		WriteError(w, http.StatusNotFound, "not_found", "role not found")
		return
	}

	WriteSuccess(w, role)
}

// CreateRole creates a new custom role.
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var input domain.RoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if input.Name == "" {
		WriteError(w, http.StatusBadRequest, "missing_name", "role name is required")
		return
	}

	role, err := h.rbacService.CreateRole(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, role)
}

// UpdateRole renames/redescribes a custom role.
func (h *RoleHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid role id")
		return
	}

	var input domain.RoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	role, err := h.rbacService.UpdateRole(r.Context(), id, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, role)
}

// DeleteRole deletes a custom role.
func (h *RoleHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid role id")
		return
	}

	if err := h.rbacService.DeleteRole(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "deleted"})
}

// roleGrantInput is the payload for granting/revoking a role permission.
type roleGrantInput struct {
	PermissionID int64 `json:"permission_id"`
}

// GrantPermission attaches a permission to a role.
func (h *RoleHandler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid role id")
		return
	}

	var input roleGrantInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if err := h.rbacService.GrantRolePermission(r.Context(), roleID, input.PermissionID); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "granted"})
}

// RevokePermission detaches a permission from a role.
func (h *RoleHandler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := parseID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid role id")
		return
	}
	permissionID, err := parseID(r, "permissionID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid permission id")
		return
	}

	if err := h.rbacService.RevokeRolePermission(r.Context(), roleID, permissionID); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "revoked"})
}

// AssignRole assigns a role to a user.
func (h *RoleHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	assignedBy := middleware.GetUserID(r.Context())
	if assignedBy == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}

	var input struct {
		RoleID int64 `json:"role_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if input.RoleID == 0 {
		WriteError(w, http.StatusBadRequest, "missing_role_id", "role id is required")
		return
	}

	if err := h.rbacService.AssignUserRole(r.Context(), userID, input.RoleID, assignedBy); err != nil {
		RespondError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"status": "assigned"})
}

// RevokeRole revokes a role from a user.
func (h *RoleHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}
	roleID, err := parseID(r, "roleID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_role_id", "invalid role id")
		return
	}

	if err := h.rbacService.RevokeUserRole(r.Context(), userID, roleID); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "revoked"})
}

// GetUserRoles retrieves the role names assigned to a user.
func (h *RoleHandler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}

	roles, err := h.rbacService.GetUserRoleNames(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"roles": roles})
}

// GetUserPermissions retrieves the resolved permission keys for a user.
func (h *RoleHandler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}

	permissions, err := h.rbacService.GetUserPermissionKeys(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"permissions": permissions})
}

// userPermissionInput is the payload for granting a direct user permission.
type userPermissionInput struct {
	PermissionID int64  `json:"permission_id"`
	CityID       *int64 `json:"city_id,omitempty"`
}

// GrantUserPermission grants a user a direct, optionally city-scoped
// permission.
func (h *RoleHandler) GrantUserPermission(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}

	var input userPermissionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	if err := h.rbacService.GrantUserPermission(r.Context(), userID, input.PermissionID, input.CityID); err != nil {
		RespondError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]string{"status": "granted"})
}

// RevokeUserPermission removes a direct user permission grant.
func (h *RoleHandler) RevokeUserPermission(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "permissionID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid permission id")
		return
	}

	if err := h.rbacService.RevokeUserPermission(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "revoked"})
}

// CheckPermission checks whether a user holds a given permission.
func (h *RoleHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_user_id", "invalid user id")
		return
	}

	module := r.URL.Query().Get("module")
	action := r.URL.Query().Get("action")
	if module == "" || action == "" {
		WriteError(w, http.StatusBadRequest, "missing_permission", "module and action query parameters are required")
		return
	}

	hasPermission, err := h.rbacService.HasPermission(r.Context(), userID, module, action)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]bool{"has_permission": hasPermission})
}
