package report

import (
	"testing"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestBuildFilterDateRangeUsesBetween(t *testing.T) {
	where, args := BuildFilter(domain.ReportFilter{
		StartDate: strPtr("2026-07-01"),
		EndDate:   strPtr("2026-07-31"),
	})
	assert.Contains(t, where, "BETWEEN $1 AND $2")
	require.Len(t, args, 2)
	assert.Equal(t, "2026-07-01", args[0])
	assert.Equal(t, "2026-07-31", args[1])
}

func TestBuildFilterNumbersPlaceholdersAcrossPredicates(t *testing.T) {
	where, args := BuildFilter(domain.ReportFilter{
		CityID:  i64Ptr(5),
		WardID:  i64Ptr(9),
		EmpCode: strPtr("E100"),
	})
	assert.NotContains(t, where, "z.id") // zone id was not set
	assert.Contains(t, where, "w.id = $1")
	assert.Contains(t, where, "c.id = $2")
	assert.Contains(t, where, "e.emp_code = $3")
	require.Len(t, args, 3)
	assert.Equal(t, int64(9), args[0])
	assert.Equal(t, int64(5), args[1])
	assert.Equal(t, "E100", args[2])
}

func TestBuildFilterHasPunchFlags(t *testing.T) {
	where, _ := BuildFilter(domain.ReportFilter{HasPunchIn: boolPtr(true), HasPunchOut: boolPtr(false)})
	assert.Contains(t, where, "a.punch_in_time IS NOT NULL")
	assert.Contains(t, where, "a.punch_out_time IS NULL")
}

func TestBuildFilterEmpty(t *testing.T) {
	where, args := BuildFilter(domain.ReportFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestApplyScopeAllAddsNoPredicate(t *testing.T) {
	where, args := ApplyScope("WHERE w.id = $1", []interface{}{int64(9)}, domain.CityScope{All: true})
	assert.Equal(t, "WHERE w.id = $1", where)
	assert.Len(t, args, 1)
}

func TestApplyScopeEmptyScopeShortCircuits(t *testing.T) {
	where, _ := ApplyScope("", nil, domain.NewCityScope())
	assert.Equal(t, "WHERE 1=0", where)
}

func TestApplyScopeAppendsCityIDPredicate(t *testing.T) {
	scope := domain.NewCityScope()
	one := int64(1)
	scope.Add(&one)

	where, args := ApplyScope("WHERE w.id = $1", []interface{}{int64(9)}, scope)
	assert.Contains(t, where, "WHERE w.id = $1 AND c.id = ANY($2)")
	require.Len(t, args, 2)
	assert.Equal(t, []int64{1}, args[1])
}

func TestLocationExpression(t *testing.T) {
	assert.Contains(t, LocationExpression(domain.ReportLocationIn), "in_address")
	assert.Contains(t, LocationExpression(domain.ReportLocationOut), "out_address")
	assert.Contains(t, LocationExpression(domain.ReportLocationBoth), "Unknown Location")
}
