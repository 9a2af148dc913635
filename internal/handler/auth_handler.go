package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// AuthHandler handles login/logout/profile endpoints (spec.md §6).
type AuthHandler struct {
	authService *service.AuthService
	rbacService *service.RBACService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *service.AuthService, rbacService *service.RBACService) *AuthHandler {
	return &AuthHandler{authService: authService, rbacService: rbacService}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginUser is the "user" object embedded in a login response: the account
// fields plus its resolved roles/permissions (spec.md §6).
type loginUser struct {
	domain.User
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
	User      loginUser `json:"user"`
}

// buildLoginResponse resolves the logged-in user's roles/permissions and
// sets the session cookie, producing the shared login-response payload for
// Login and SupervisorLogin.
func (h *AuthHandler) buildLoginResponse(ctx context.Context, w http.ResponseWriter, result *service.LoginResult) (*loginResponse, error) {
	access, err := h.rbacService.GetUserWithAccess(ctx, result.User.ID)
	if err != nil {
		return nil, err
	}

	setAuthCookie(w, result.Token, result.ExpiresAt)

	return &loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User: loginUser{
			User:        result.User,
			Roles:       access.Roles,
			Permissions: access.Permissions,
		},
	}, nil
}

// setAuthCookie sets the "token" session cookie (spec.md §6 "sets secure
// cookie token"), expiring alongside the bearer token itself.
func setAuthCookie(w http.ResponseWriter, token, expiresAt string) {
	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		expiry = time.Now().Add(24 * time.Hour)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie clears the "token" session cookie (spec.md §6 "clears
// cookie").
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Login authenticates any user account and issues a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), input.Email, input.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		RespondError(w, err)
		return
	}

	resp, err := h.buildLoginResponse(r.Context(), w, result)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, resp)
}

// SupervisorLogin authenticates the same way as Login, but is the
// endpoint the field-supervisor mobile app targets; it rejects any
// successful login whose account isn't primary-role "supervisor" so a
// mis-pointed admin credential doesn't silently land in the field app.
func (h *AuthHandler) SupervisorLogin(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	result, err := h.authService.Login(r.Context(), input.Email, input.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		RespondError(w, err)
		return
	}
	if result.User.PrimaryRole != domain.PrimaryRoleSupervisor {
		WriteError(w, http.StatusForbidden, "not_a_supervisor", "this account is not a supervisor account")
		return
	}

	resp, err := h.buildLoginResponse(r.Context(), w, result)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, resp)
}

// Logout records a logout event; bearer tokens are stateless and simply
// expire on their own.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	h.authService.Logout(r.Context(), *userID, r.RemoteAddr, r.UserAgent())
	clearAuthCookie(w)
	WriteSuccess(w, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user's own profile and resolved access.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	access, err := h.rbacService.GetUserWithAccess(r.Context(), *userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, access)
}
