package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// AuditHandler handles audit trail endpoints (spec.md §4.1's RBAC mutations
// and §4.4's punch events, all recorded through the audit middleware).
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List retrieves audit logs matching a query-parameter filter.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter domain.AuditLogFilter

	if userID := q.Get("user_id"); userID != "" {
		if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
			filter.UserID = &id
		}
	}
	for _, a := range q["action"] {
		filter.Actions = append(filter.Actions, domain.AuditAction(a))
	}
	for _, o := range q["outcome"] {
		filter.Outcomes = append(filter.Outcomes, domain.AuditOutcome(o))
	}
	filter.Resource = q.Get("resource")

	if startTime := q.Get("start_time"); startTime != "" {
		if t, err := time.Parse(time.RFC3339, startTime); err == nil {
			filter.StartTime = &t
		}
	}
	if endTime := q.Get("end_time"); endTime != "" {
		if t, err := time.Parse(time.RFC3339, endTime); err == nil {
			filter.EndTime = &t
		}
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}

	page, err := h.auditService.List(r.Context(), filter)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, page)
}
