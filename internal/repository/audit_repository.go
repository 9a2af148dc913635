package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// AuditRepository persists the audit trail, with a dynamic WHERE builder
// mirroring the filter patterns the Report Engine itself uses (spec.md §4.5
// note, §7 audit surface).
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	details, err := json.Marshal(log.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (
			user_id, action, resource, resource_id, outcome, details,
			ip_address, user_agent, request_id, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		nullableInt64(log.UserID), log.Action, log.Resource, nullableString(log.ResourceID),
		log.Outcome, details, nullableString(log.IPAddress), nullableString(log.UserAgent),
		nullableString(log.RequestID), log.DurationMS,
	).Scan(&log.ID, &log.CreatedAt)
}

// List retrieves audit logs matching a dynamic filter, building up
// parameterized $N placeholders the same way the rest of the repository
// layer does for report queries.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditLogFilter) (*domain.AuditLogPage, error) {
	var conditions []string
	var args []interface{}
	argN := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argN))
		args = append(args, *filter.UserID)
		argN++
	}
	if len(filter.Actions) > 0 {
		conditions = append(conditions, fmt.Sprintf("action = ANY($%d)", argN))
		args = append(args, actionsToStrings(filter.Actions))
		argN++
	}
	if len(filter.Outcomes) > 0 {
		conditions = append(conditions, fmt.Sprintf("outcome = ANY($%d)", argN))
		args = append(args, outcomesToStrings(filter.Outcomes))
		argN++
	}
	if filter.Resource != "" {
		conditions = append(conditions, fmt.Sprintf("resource = $%d", argN))
		args = append(args, filter.Resource)
		argN++
	}
	if filter.StartTime != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argN))
		args = append(args, *filter.StartTime)
		argN++
	}
	if filter.EndTime != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argN))
		args = append(args, *filter.EndTime)
		argN++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs %s`, where)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, action, resource, resource_id, outcome, details,
			ip_address, user_agent, request_id, duration_ms, created_at
		FROM audit_logs %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var userID sql.NullInt64
		var resourceID, ipAddress, userAgent, requestID sql.NullString
		var details []byte

		err := rows.Scan(
			&log.ID, &userID, &log.Action, &log.Resource, &resourceID, &log.Outcome, &details,
			&ipAddress, &userAgent, &requestID, &log.DurationMS, &log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if userID.Valid {
			log.UserID = &userID.Int64
		}
		log.ResourceID = resourceID.String
		log.IPAddress = ipAddress.String
		log.UserAgent = userAgent.String
		log.RequestID = requestID.String
		if len(details) > 0 {
			json.Unmarshal(details, &log.Details)
		}
		logs = append(logs, log)
	}

	return &domain.AuditLogPage{
		Logs:    logs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(logs)) < total,
	}, rows.Err()
}

func actionsToStrings(actions []domain.AuditAction) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func outcomesToStrings(outcomes []domain.AuditOutcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = string(o)
	}
	return out
}
