package service

import (
	"context"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/report"
)

// ReportService resolves a requesting user's city scope and runs it
// through the Report Engine (spec.md §4.2 step 4, §4.5).
type ReportService struct {
	engine *report.Engine
	scope  *ScopeService
}

// NewReportService creates a new report service.
func NewReportService(engine *report.Engine, scope *ScopeService) *ReportService {
	return &ReportService{engine: engine, scope: scope}
}

// Run resolves the caller's city scope for the "attendance:report"
// permission and executes the requested grouping against it.
func (s *ReportService) Run(ctx context.Context, userID int64, filter domain.ReportFilter) (*domain.ReportResult, []map[string]interface{}, error) {
	scope, err := s.scope.ResolveCityScope(ctx, userID, "attendance", "report")
	if err != nil {
		return nil, nil, fmt.Errorf("resolve report scope: %w", err)
	}
	return s.engine.Run(ctx, filter, scope)
}

// Grouping exposes the registered grouping definition for CSV rendering at
// the handler layer.
func (s *ReportService) Grouping(name domain.ReportGrouping) (report.Grouping, bool) {
	g, ok := report.Groupings[name]
	return g, ok
}
