package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// AuditRecorder is the subset of AuditService the middleware needs, kept as
// an interface so tests can substitute a fake.
type AuditRecorder interface {
	LogEvent(ctx context.Context, event service.AuditEvent)
}

// auditResponseWriter wraps http.ResponseWriter to capture the final status
// code for outcome classification.
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *auditResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *auditResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.statusCode = http.StatusOK
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Audit records every auditable request to the audit trail (spec.md §4.1's
// RBAC mutations, login/logout, face enrolment changes and CSV report
// downloads). Punch events are recorded by AttendanceService through
// AuditService.LogPunch; the /punch/in and /punch/out patterns below match
// no route this router mounts.
func Audit(recorder AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			action, resource, resourceID := determineAction(r)
			if action == "" {
				next.ServeHTTP(w, r)
				return
			}

			var details map[string]interface{}
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				body, err := io.ReadAll(r.Body)
				if err == nil && len(body) > 0 {
					r.Body = io.NopCloser(bytes.NewBuffer(body))
					details = extractAuditDetails(body, action)
				}
			}

			wrapped := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			outcome := determineOutcome(wrapped.statusCode)
			userID := GetUserID(r.Context())

			recorder.LogEvent(r.Context(), service.AuditEvent{
				UserID:     userID,
				Action:     action,
				Resource:   resource,
				ResourceID: resourceID,
				Outcome:    outcome,
				Details:    details,
				IPAddress:  r.RemoteAddr,
				UserAgent:  r.UserAgent(),
				RequestID:  chimiddleware.GetReqID(r.Context()),
				DurationMS: time.Since(start).Milliseconds(),
			})
		})
	}
}

// determineAction classifies a request into an audit action, resource, and
// resource id; an empty action means the request is not auditable.
func determineAction(r *http.Request) (domain.AuditAction, string, string) {
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return domain.AuditActionUserLogin, "auth", ""
	case strings.HasSuffix(path, "/auth/logout"):
		return domain.AuditActionUserLogout, "auth", ""
	case strings.Contains(path, "/punch/in"):
		return domain.AuditActionAttendancePunchIn, "attendance", ""
	case strings.Contains(path, "/punch/out"):
		return domain.AuditActionAttendancePunchOut, "attendance", ""
	case strings.HasSuffix(path, "/faceRoutes/store-face"):
		return domain.AuditActionEmployeeEnroll, "employee", chi.URLParam(r, "employeeID")
	case strings.Contains(path, "/faceRoutes/") && r.Method == http.MethodDelete:
		return domain.AuditActionEmployeeUnenroll, "employee", chi.URLParam(r, "employeeID")
	case strings.Contains(path, "/attendance/download"):
		if r.URL.Query().Get("format") == "csv" {
			return domain.AuditActionReportDownload, "report", ""
		}
		return "", "", ""
	case strings.Contains(path, "/roles") && !strings.Contains(path, "/users/"):
		roleID := chi.URLParam(r, "roleID")
		switch r.Method {
		case http.MethodPost:
			return domain.AuditActionRoleCreate, "role", ""
		case http.MethodPut:
			return domain.AuditActionRoleUpdate, "role", roleID
		case http.MethodDelete:
			return domain.AuditActionRoleDelete, "role", roleID
		}
	case strings.Contains(path, "/users/") && strings.Contains(path, "/roles"):
		switch r.Method {
		case http.MethodPost:
			return domain.AuditActionRoleAssign, "user_role", chi.URLParam(r, "userID")
		case http.MethodDelete:
			return domain.AuditActionRoleRevoke, "user_role", chi.URLParam(r, "userID")
		}
	case strings.Contains(path, "/permissions") && r.Method == http.MethodPost:
		return domain.AuditActionPermissionGrant, "user_permission", chi.URLParam(r, "userID")
	case strings.Contains(path, "/permissions") && r.Method == http.MethodDelete:
		return domain.AuditActionPermissionRevoke, "user_permission", chi.URLParam(r, "permissionID")
	}

	return "", "", ""
}

// determineOutcome classifies a response status into an audit outcome: a
// 2xx is a success, a 400/401/403 is a blocked attempt, anything else is a
// failure.
func determineOutcome(statusCode int) domain.AuditOutcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return domain.AuditOutcomeSuccess
	case statusCode == http.StatusBadRequest || statusCode == http.StatusForbidden || statusCode == http.StatusUnauthorized:
		return domain.AuditOutcomeBlocked
	default:
		return domain.AuditOutcomeFailure
	}
}

// extractAuditDetails pulls a handful of request-body fields worth
// recording alongside an audit entry, keyed by the action they belong to.
func extractAuditDetails(body []byte, action domain.AuditAction) map[string]interface{} {
	details := make(map[string]interface{})

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return details
	}

	switch action {
	case domain.AuditActionUserLogin:
		if email, ok := data["email"].(string); ok {
			details["email"] = email
		}
	case domain.AuditActionRoleCreate, domain.AuditActionRoleUpdate:
		if name, ok := data["name"].(string); ok {
			details["role_name"] = name
		}
	}

	return details
}
