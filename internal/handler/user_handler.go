package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/repository"
	"github.com/apricitydigital/attendance-core/internal/service"
	"github.com/rs/zerolog"
)

// UserHandler handles user account endpoints: admins, supervisors, and
// other staff who authenticate against the API (distinct from employees,
// who are punched in/out but never log in).
type UserHandler struct {
	logger      zerolog.Logger
	userRepo    *repository.UserRepository
	authService *service.AuthService
	rbacService *service.RBACService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(logger zerolog.Logger, userRepo *repository.UserRepository, authService *service.AuthService, rbacService *service.RBACService) *UserHandler {
	return &UserHandler{
		logger:      logger,
		userRepo:    userRepo,
		authService: authService,
		rbacService: rbacService,
	}
}

// UserResponse represents a user with their assigned role names.
type UserResponse struct {
	domain.User
	Roles []string `json:"roles,omitempty"`
}

func (h *UserHandler) toResponse(r *http.Request, user domain.User) UserResponse {
	roles, err := h.rbacService.GetUserRoleNames(r.Context(), user.ID)
	if err != nil {
		h.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to resolve user roles")
	}
	return UserResponse{User: user, Roles: roles}
}

// ListUsers returns a page of users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	users, err := h.userRepo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list users")
		RespondError(w, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, h.toResponse(r, u))
	}

	WriteSuccess(w, map[string]interface{}{
		"users":  response,
		"limit":  limit,
		"offset": offset,
	})
}

// GetUser returns a specific user by id.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	user, err := h.userRepo.Get(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get user")
		RespondError(w, err)
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	WriteSuccess(w, h.toResponse(r, *user))
}

// CreateUser creates a new user account.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input domain.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if input.Name == "" {
		WriteError(w, http.StatusBadRequest, "missing_name", "name is required")
		return
	}

	user, err := h.authService.CreateUser(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	h.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("user created")
	WriteJSON(w, http.StatusCreated, user)
}

// UpdateUser updates a user's profile fields.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	user, err := h.userRepo.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	var input domain.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	user.Name = input.Name
	user.Email = input.Email
	user.Phone = input.Phone
	user.Department = input.Department

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, user)
}

// DeleteUser removes a user account.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "userID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid user id")
		return
	}

	if err := h.userRepo.Delete(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "deleted"})
}

// changePasswordInput is the payload for a self-service password change.
type changePasswordInput struct {
	NewPassword string `json:"new_password"`
}

// ChangePassword replaces the authenticated user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	var input changePasswordInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if len(input.NewPassword) < 8 {
		WriteError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), *userID, input.NewPassword); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "password_changed"})
}
