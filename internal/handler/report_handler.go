package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/report"
	"github.com/apricitydigital/attendance-core/internal/service"
)

// ReportHandler serves the scope-filtered attendance reporting engine as
// JSON or CSV (spec.md §4.5).
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func int64QueryPtr(r *http.Request, key string) *int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func boolQueryPtr(r *http.Request, key string) *bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// parseReportFilter builds a ReportFilter from query parameters, the
// shared shape behind both the full report download and the short report
// summary (spec.md §4.5's filter builder).
func parseReportFilter(r *http.Request) domain.ReportFilter {
	q := r.URL.Query()

	grouping := domain.ReportGrouping(q.Get("group_by"))
	if grouping == "" {
		grouping = domain.ReportGroupingDetail
	}
	locationType := domain.ReportLocationType(q.Get("location_type"))
	if locationType == "" {
		locationType = domain.ReportLocationBoth
	}
	format := domain.ReportFormat(q.Get("format"))
	if format == "" {
		format = domain.ReportFormatJSON
	}

	return domain.ReportFilter{
		Date:           stringPtr(q.Get("date")),
		StartDate:      stringPtr(q.Get("start_date")),
		EndDate:        stringPtr(q.Get("end_date")),
		ZoneID:         int64QueryPtr(r, "zone_id"),
		WardID:         int64QueryPtr(r, "ward_id"),
		CityID:         int64QueryPtr(r, "city_id"),
		SupervisorID:   int64QueryPtr(r, "supervisor_id"),
		EmployeeID:     int64QueryPtr(r, "employee_id"),
		EmpCode:        stringPtr(q.Get("emp_code")),
		ZoneName:       stringPtr(q.Get("zone_name")),
		WardName:       stringPtr(q.Get("ward_name")),
		CityName:       stringPtr(q.Get("city_name")),
		SupervisorName: stringPtr(q.Get("supervisor_name")),
		Search:         stringPtr(q.Get("search")),
		Location:       stringPtr(q.Get("location")),
		HasPunchIn:     boolQueryPtr(r, "has_punch_in"),
		HasPunchOut:    boolQueryPtr(r, "has_punch_out"),
		AbsenteesOnly:  q.Get("absentees_only") == "true",
		Grouping:       grouping,
		LocationType:   locationType,
		Format:         format,
	}
}

// Download renders the full report as JSON or, when format=csv, as an
// attachment named per report.FileName.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	filter := parseReportFilter(r)
	result, rows, err := h.reportService.Run(r.Context(), *userID, filter)
	if err != nil {
		RespondError(w, err)
		return
	}

	if filter.Format != domain.ReportFormatCSV {
		WriteSuccess(w, result)
		return
	}

	grouping, ok := h.reportService.Grouping(filter.Grouping)
	if !ok {
		WriteError(w, http.StatusBadRequest, "unknown_grouping", "unknown report grouping")
		return
	}

	csvBytes, err := report.RenderCSV(grouping, rows)
	if err != nil {
		RespondError(w, err)
		return
	}

	fileName := report.FileName(string(filter.Grouping), result.GeneratedAt)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(csvBytes)
}

// ShortReport returns just the grouping, count and generation timestamp for
// a filter, for dashboard widgets that don't need the full row set.
func (h *ReportHandler) ShortReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == nil {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	filter := parseReportFilter(r)
	result, _, err := h.reportService.Run(r.Context(), *userID, filter)
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"group_by":     result.GroupBy,
		"count":        result.Count,
		"generated_at": result.GeneratedAt.Format(time.RFC3339),
	})
}
