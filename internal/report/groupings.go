package report

import (
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// Grouping describes one report shape: its projection, join root, and
// optional GROUP BY/HAVING/ORDER BY clauses, plus the CSV column
// descriptors that label its result rows (spec.md §4.5).
type Grouping struct {
	Name    domain.ReportGrouping
	From    string
	GroupBy string
	OrderBy string
	Having  func(f domain.ReportFilter) (string, []interface{})
	Columns []domain.ReportColumn
}

const baseJoins = `
	attendance a
	JOIN employees e ON e.id = a.emp_id
	JOIN wards w ON w.id = a.ward_id
	JOIN zones z ON z.id = w.zone_id
	JOIN cities c ON c.id = z.city_id
	LEFT JOIN supervisor_wards sw ON sw.ward_id = w.id
	LEFT JOIN users su ON su.id = sw.supervisor_id`

// Select builds the grouping's SELECT projection, substituting the
// location expression for the requested location type (spec.md §4.5).
func (g Grouping) Select(locationType domain.ReportLocationType) string {
	loc := LocationExpression(locationType)

	switch g.Name {
	case domain.ReportGroupingDetail:
		return fmt.Sprintf(`
			e.emp_code, e.name AS employee_name, w.name AS ward_name, z.name AS zone_name, c.name AS city_name,
			a.logical_date, a.punch_in_time, a.punch_out_time, %s AS location`, loc)
	case domain.ReportGroupingZone:
		return fmt.Sprintf(`
			z.name AS zone_name, c.name AS city_name, a.logical_date,
			COUNT(*) FILTER (WHERE a.punch_in_time IS NOT NULL) AS present_count,
			COUNT(*) AS total_count, %s AS location`, loc)
	case domain.ReportGroupingWard:
		return fmt.Sprintf(`
			w.name AS ward_name, z.name AS zone_name, a.logical_date,
			COUNT(*) FILTER (WHERE a.punch_in_time IS NOT NULL) AS present_count,
			COUNT(*) AS total_count, %s AS location`, loc)
	case domain.ReportGroupingCity:
		return fmt.Sprintf(`
			c.name AS city_name, a.logical_date,
			COUNT(*) FILTER (WHERE a.punch_in_time IS NOT NULL) AS present_count,
			COUNT(*) AS total_count, %s AS location`, loc)
	case domain.ReportGroupingSupervisor:
		return fmt.Sprintf(`
			su.name AS supervisor_name, w.name AS ward_name, a.logical_date,
			COUNT(*) FILTER (WHERE a.punch_in_time IS NOT NULL) AS present_count,
			COUNT(*) AS total_count, %s AS location`, loc)
	case domain.ReportGroupingLocation:
		return fmt.Sprintf(`%s AS location, a.logical_date, COUNT(*) AS visit_count`, loc)
	case domain.ReportGroupingWardSummary:
		return `
			w.name AS ward_name, z.name AS zone_name,
			COUNT(DISTINCT e.id) AS total_employees,
			COUNT(DISTINCT e.id) FILTER (WHERE a.logical_date = CURRENT_DATE AND a.punch_in_time IS NOT NULL) AS present_today`
	case domain.ReportGroupingSupervisorSummary:
		return `
			su.name AS supervisor_name,
			COUNT(DISTINCT e.id) AS total_employees,
			COUNT(DISTINCT e.id) FILTER (WHERE a.logical_date = CURRENT_DATE - 1 AND a.punch_in_time IS NOT NULL) AS present_yesterday`
	default:
		return "*"
	}
}

// Groupings is the registry of every supported report shape.
var Groupings = map[domain.ReportGrouping]Grouping{
	domain.ReportGroupingDetail: {
		Name:    domain.ReportGroupingDetail,
		From:    baseJoins,
		OrderBy: "a.logical_date DESC, e.name",
		Columns: []domain.ReportColumn{
			{Header: "Employee Code", Key: "emp_code"},
			{Header: "Employee Name", Key: "employee_name"},
			{Header: "Ward", Key: "ward_name"},
			{Header: "Zone", Key: "zone_name"},
			{Header: "City", Key: "city_name"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Punch In", Key: "punch_in_time"},
			{Header: "Punch Out", Key: "punch_out_time"},
			{Header: "Location", Key: "location"},
		},
	},
	domain.ReportGroupingZone: {
		Name:    domain.ReportGroupingZone,
		From:    baseJoins,
		GroupBy: "z.name, c.name, a.logical_date, location",
		OrderBy: "a.logical_date DESC, z.name",
		Columns: []domain.ReportColumn{
			{Header: "Zone", Key: "zone_name"},
			{Header: "City", Key: "city_name"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Present", Key: "present_count"},
			{Header: "Total", Key: "total_count"},
		},
	},
	domain.ReportGroupingWard: {
		Name:    domain.ReportGroupingWard,
		From:    baseJoins,
		GroupBy: "w.name, z.name, a.logical_date, location",
		OrderBy: "a.logical_date DESC, w.name",
		Columns: []domain.ReportColumn{
			{Header: "Ward", Key: "ward_name"},
			{Header: "Zone", Key: "zone_name"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Present", Key: "present_count"},
			{Header: "Total", Key: "total_count"},
		},
	},
	domain.ReportGroupingCity: {
		Name:    domain.ReportGroupingCity,
		From:    baseJoins,
		GroupBy: "c.name, a.logical_date, location",
		OrderBy: "a.logical_date DESC, c.name",
		Columns: []domain.ReportColumn{
			{Header: "City", Key: "city_name"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Present", Key: "present_count"},
			{Header: "Total", Key: "total_count"},
		},
	},
	domain.ReportGroupingSupervisor: {
		Name:    domain.ReportGroupingSupervisor,
		From:    baseJoins,
		GroupBy: "su.name, w.name, a.logical_date, location",
		OrderBy: "a.logical_date DESC, su.name",
		Columns: []domain.ReportColumn{
			{Header: "Supervisor", Key: "supervisor_name"},
			{Header: "Ward", Key: "ward_name"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Present", Key: "present_count"},
			{Header: "Total", Key: "total_count"},
		},
	},
	domain.ReportGroupingLocation: {
		Name:    domain.ReportGroupingLocation,
		From:    baseJoins,
		GroupBy: "location, a.logical_date",
		OrderBy: "a.logical_date DESC, visit_count DESC",
		Columns: []domain.ReportColumn{
			{Header: "Location", Key: "location"},
			{Header: "Date", Key: "logical_date"},
			{Header: "Visits", Key: "visit_count"},
		},
	},
	domain.ReportGroupingWardSummary: {
		Name:    domain.ReportGroupingWardSummary,
		From:    baseJoins,
		GroupBy: "w.name, z.name",
		OrderBy: "w.name",
		Columns: []domain.ReportColumn{
			{Header: "Ward", Key: "ward_name"},
			{Header: "Zone", Key: "zone_name"},
			{Header: "Total Employees", Key: "total_employees"},
			{Header: "Present Today", Key: "present_today"},
		},
	},
	domain.ReportGroupingSupervisorSummary: {
		Name:    domain.ReportGroupingSupervisorSummary,
		From:    baseJoins,
		GroupBy: "su.name",
		OrderBy: "su.name",
		Having: func(f domain.ReportFilter) (string, []interface{}) {
			if !f.AbsenteesOnly {
				return "", nil
			}
			return "COUNT(DISTINCT e.id) - COUNT(DISTINCT e.id) FILTER (WHERE a.logical_date = CURRENT_DATE - 1 AND a.punch_in_time IS NOT NULL) > 0", nil
		},
		Columns: []domain.ReportColumn{
			{Header: "Supervisor", Key: "supervisor_name"},
			{Header: "Total Employees", Key: "total_employees"},
			{Header: "Present Yesterday", Key: "present_yesterday"},
		},
	},
}
