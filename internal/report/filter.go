// Package report implements the scope-filtered attendance reporting engine
// (spec.md §4.5): a composable SQL builder across groupings, a parameterised
// filter/scope clause, and JSON/CSV rendering.
package report

import (
	"fmt"
	"strings"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// clauseBuilder accumulates parameterised WHERE predicates and their bound
// arguments, numbering placeholders as they're appended.
type clauseBuilder struct {
	predicates []string
	args       []interface{}
}

func (b *clauseBuilder) add(predicate string, args ...interface{}) {
	n := len(b.args)
	for i := range args {
		predicate = strings.Replace(predicate, fmt.Sprintf("$%d", i+1), fmt.Sprintf("$%d", n+i+1), 1)
	}
	b.predicates = append(b.predicates, predicate)
	b.args = append(b.args, args...)
}

func (b *clauseBuilder) sql() string {
	if len(b.predicates) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.predicates, " AND ")
}

// BuildFilter turns a ReportFilter into a parameterised WHERE clause. All
// values are bound parameters, never interpolated; text names use
// case-insensitive contains, ids use strict equality, booleans use IS
// NULL / IS NOT NULL (spec.md §4.5).
func BuildFilter(f domain.ReportFilter) (string, []interface{}) {
	b := &clauseBuilder{}

	switch {
	case f.Date != nil:
		b.add("a.logical_date = $1", *f.Date)
	case f.StartDate != nil && f.EndDate != nil:
		b.add("a.logical_date BETWEEN $1 AND $2", *f.StartDate, *f.EndDate)
	}

	if f.ZoneID != nil {
		b.add("z.id = $1", *f.ZoneID)
	}
	if f.WardID != nil {
		b.add("w.id = $1", *f.WardID)
	}
	if f.CityID != nil {
		b.add("c.id = $1", *f.CityID)
	}
	if f.SupervisorID != nil {
		b.add("sw.supervisor_id = $1", *f.SupervisorID)
	}
	if f.EmployeeID != nil {
		b.add("e.id = $1", *f.EmployeeID)
	}
	if f.EmpCode != nil {
		b.add("e.emp_code = $1", *f.EmpCode)
	}
	if f.ZoneName != nil {
		b.add("z.name ILIKE '%' || $1 || '%'", *f.ZoneName)
	}
	if f.WardName != nil {
		b.add("w.name ILIKE '%' || $1 || '%'", *f.WardName)
	}
	if f.CityName != nil {
		b.add("c.name ILIKE '%' || $1 || '%'", *f.CityName)
	}
	if f.SupervisorName != nil {
		b.add("su.name ILIKE '%' || $1 || '%'", *f.SupervisorName)
	}
	if f.Search != nil {
		b.add("e.name ILIKE '%' || $1 || '%'", *f.Search)
	}
	if f.Location != nil {
		b.add(LocationExpression(f.LocationType)+" ILIKE '%' || $1 || '%'", *f.Location)
	}
	if f.HasPunchIn != nil {
		if *f.HasPunchIn {
			b.add("a.punch_in_time IS NOT NULL")
		} else {
			b.add("a.punch_in_time IS NULL")
		}
	}
	if f.HasPunchOut != nil {
		if *f.HasPunchOut {
			b.add("a.punch_out_time IS NOT NULL")
		} else {
			b.add("a.punch_out_time IS NULL")
		}
	}

	return b.sql(), b.args
}

// ApplyScope appends the caller's city scope to an existing WHERE clause
// (spec.md §4.5's scope injection). An empty (non-all, zero-city) scope
// short-circuits with an always-false predicate rather than failing.
func ApplyScope(where string, args []interface{}, scope domain.CityScope) (string, []interface{}) {
	if scope.All {
		return where, args
	}

	ids := scope.IDs()
	if len(ids) == 0 {
		return appendPredicate(where, "1=0"), args
	}

	n := len(args) + 1
	args = append(args, int64ArrayArg(ids))
	predicate := fmt.Sprintf("c.id = ANY($%d)", n)
	return appendPredicate(where, predicate), args
}

func appendPredicate(where, predicate string) string {
	if where == "" {
		return "WHERE " + predicate
	}
	return where + " AND " + predicate
}

// int64ArrayArg is bound as a Postgres bigint[] via the pgx driver's
// native []int64 support, the same convention the rest of the repository
// layer uses for ANY($N) filters.
func int64ArrayArg(ids []int64) []int64 {
	return ids
}

// LocationExpression renders the location column per spec.md §4.5:
// both -> COALESCE(in_address, out_address, 'Unknown Location'); in/out
// read their single address column. Whitespace-only values are treated as
// null by NULLIF + TRIM.
func LocationExpression(locationType domain.ReportLocationType) string {
	switch locationType {
	case domain.ReportLocationIn:
		return "NULLIF(TRIM(a.in_address), '')"
	case domain.ReportLocationOut:
		return "NULLIF(TRIM(a.out_address), '')"
	default:
		return "COALESCE(NULLIF(TRIM(a.in_address), ''), NULLIF(TRIM(a.out_address), ''), 'Unknown Location')"
	}
}
