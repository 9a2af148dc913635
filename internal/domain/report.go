package domain

import "time"

// ReportGrouping selects which attendance report shape to produce
// (spec.md §4.5).
type ReportGrouping string

const (
	ReportGroupingDetail             ReportGrouping = "detail"
	ReportGroupingZone               ReportGrouping = "zone"
	ReportGroupingWard               ReportGrouping = "ward"
	ReportGroupingCity               ReportGrouping = "city"
	ReportGroupingSupervisor         ReportGrouping = "supervisor"
	ReportGroupingLocation           ReportGrouping = "location"
	ReportGroupingWardSummary        ReportGrouping = "ward_summary"
	ReportGroupingSupervisorSummary  ReportGrouping = "supervisor_summary"
)

// ReportLocationType selects which punch address feeds the report's
// location expression.
type ReportLocationType string

const (
	ReportLocationBoth ReportLocationType = "both"
	ReportLocationIn   ReportLocationType = "in"
	ReportLocationOut  ReportLocationType = "out"
)

// ReportFormat is the rendering the caller requested.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
)

// ReportFilter narrows the attendance rows a report draws from (spec.md
// §4.5's filter builder).
type ReportFilter struct {
	Date           *string
	StartDate      *string
	EndDate        *string
	ZoneID         *int64
	WardID         *int64
	CityID         *int64
	SupervisorID   *int64
	EmployeeID     *int64
	EmpCode        *string
	ZoneName       *string
	WardName       *string
	CityName       *string
	SupervisorName *string
	Search         *string
	Location       *string
	HasPunchIn     *bool
	HasPunchOut    *bool
	AbsenteesOnly  bool

	Grouping     ReportGrouping
	LocationType ReportLocationType
	Format       ReportFormat
}

// ReportColumn describes one CSV column: its header and how to read the
// cell's value out of a result row.
type ReportColumn struct {
	Header string
	Key    string
}

// ReportResult is the JSON rendering of a report run.
type ReportResult struct {
	GroupBy      ReportGrouping         `json:"group_by"`
	LocationType ReportLocationType     `json:"location_type"`
	Filters      ReportFilter           `json:"filters"`
	Count        int                    `json:"count"`
	Data         []map[string]interface{} `json:"data"`
	GeneratedAt  time.Time              `json:"generated_at"`
}
