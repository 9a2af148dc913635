// Package service contains the attendance system's business logic.
package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/repository"
)

// AuditService records audited actions to durable storage.
type AuditService struct {
	repo   *repository.AuditRepository
	logger *slog.Logger
}

// NewAuditService creates a new audit service.
func NewAuditService(repo *repository.AuditRepository, logger *slog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// AuditEvent is the input for recording an audit log entry.
type AuditEvent struct {
	UserID     *int64
	Action     domain.AuditAction
	Resource   string
	ResourceID string
	Outcome    domain.AuditOutcome
	Details    map[string]interface{}
	IPAddress  string
	UserAgent  string
	RequestID  string
	DurationMS int64
}

// LogEvent persists an audit log entry.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) {
	log := &domain.AuditLog{
		UserID:     event.UserID,
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Outcome:    event.Outcome,
		Details:    event.Details,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		RequestID:  event.RequestID,
		DurationMS: event.DurationMS,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Error("failed to write audit log",
			"action", event.Action,
			"resource", event.Resource,
			"error", err,
		)
		return
	}

	s.logger.Debug("audit log recorded",
		"id", log.ID,
		"action", event.Action,
		"outcome", event.Outcome,
	)
}

// LogAuthEvent records a login/logout attempt.
func (s *AuditService) LogAuthEvent(ctx context.Context, userID *int64, action domain.AuditAction, success bool, ipAddress, userAgent string, details map[string]interface{}) {
	outcome := domain.AuditOutcomeSuccess
	if !success {
		outcome = domain.AuditOutcomeFailure
	}
	s.LogEvent(ctx, AuditEvent{
		UserID:    userID,
		Action:    action,
		Resource:  "auth",
		Outcome:   outcome,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Details:   details,
	})
}

// LogPunch records a successful or rejected attendance punch.
func (s *AuditService) LogPunch(ctx context.Context, actorID *int64, action domain.AuditAction, attendanceID int64, outcome domain.AuditOutcome, details map[string]interface{}) {
	s.LogEvent(ctx, AuditEvent{
		UserID:     actorID,
		Action:     action,
		Resource:   "attendance",
		ResourceID: strconv.FormatInt(attendanceID, 10),
		Outcome:    outcome,
		Details:    details,
	})
}

// List retrieves a single audit log page matching a filter.
func (s *AuditService) List(ctx context.Context, filter domain.AuditLogFilter) (*domain.AuditLogPage, error) {
	return s.repo.List(ctx, filter)
}

