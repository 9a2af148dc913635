package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apricitydigital/attendance-core/internal/apperr"
	"github.com/apricitydigital/attendance-core/internal/domain"
)

// Engine runs report queries against Postgres, composing a Grouping's
// projection with the filter builder's WHERE clause and the caller's city
// scope (spec.md §4.5).
type Engine struct {
	db *sql.DB
}

// NewEngine creates a new report engine.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Run executes one report and returns its rows as generic maps, suitable
// for both JSON rendering and CSV projection via the grouping's columns.
func (e *Engine) Run(ctx context.Context, filter domain.ReportFilter, scope domain.CityScope) (*domain.ReportResult, []map[string]interface{}, error) {
	grouping, ok := Groupings[filter.Grouping]
	if !ok {
		return nil, nil, apperr.Validation("unknown_grouping", fmt.Sprintf("unknown report grouping %q", filter.Grouping))
	}

	where, args := BuildFilter(filter)
	where, args = ApplyScope(where, args, scope)

	query := fmt.Sprintf("SELECT %s FROM %s %s", grouping.Select(filter.LocationType), grouping.From, where)
	if grouping.GroupBy != "" {
		query += " GROUP BY " + grouping.GroupBy
	}
	if grouping.Having != nil {
		if having, havingArgs := grouping.Having(filter); having != "" {
			query += " HAVING " + having
			args = append(args, havingArgs...)
		}
	}
	if grouping.OrderBy != "" {
		query += " ORDER BY " + grouping.OrderBy
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("run report query: %w", err)
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return nil, nil, err
	}

	result := &domain.ReportResult{
		GroupBy:      filter.Grouping,
		LocationType: filter.LocationType,
		Filters:      filter,
		Count:        len(data),
		Data:         data,
		GeneratedAt:  time.Now(),
	}
	return result, data, nil
}

// scanRows reads every row of an arbitrary SELECT into a generic
// column-name -> value map, since report projections vary per grouping.
func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read report columns: %w", err)
	}

	var out []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
