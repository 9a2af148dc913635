package report

import (
	"strings"
	"testing"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCSVHeaderAndRows(t *testing.T) {
	grouping := Grouping{
		Name: domain.ReportGroupingDetail,
		Columns: []domain.ReportColumn{
			{Header: "Employee Code", Key: "emp_code"},
			{Header: "Zone", Key: "zone_name"},
		},
	}
	rows := []map[string]interface{}{
		{"emp_code": "E100", "zone_name": "North"},
		{"emp_code": "E101", "zone_name": nil},
	}

	out, err := RenderCSV(grouping, rows)
	require.NoError(t, err)

	csvText := string(out)
	assert.Contains(t, csvText, `"Employee Code","Zone"`)
	assert.Contains(t, csvText, `"E100","North"`)
	assert.Contains(t, csvText, `"E101",""`)
}

func TestRenderCSVDoublesEmbeddedQuotes(t *testing.T) {
	grouping := Grouping{Columns: []domain.ReportColumn{{Header: "Note", Key: "note"}}}

	out, err := RenderCSV(grouping, []map[string]interface{}{{"note": `He said "late"`}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"He said ""late"""`)
}

func TestRenderCSVFormatsTimeValues(t *testing.T) {
	grouping := Grouping{Columns: []domain.ReportColumn{{Header: "Punch In", Key: "punch_in_time"}}}
	ts := time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC)

	out, err := RenderCSV(grouping, []map[string]interface{}{{"punch_in_time": ts}})
	require.NoError(t, err)
	assert.Contains(t, string(out), ts.Format(time.RFC3339))
}

func TestFileNameReplacesColonsAndDots(t *testing.T) {
	generatedAt := time.Date(2026, 7, 30, 12, 30, 45, 0, time.UTC)
	name := FileName("detail", generatedAt)

	assert.True(t, strings.HasPrefix(name, "attendance-detail-report-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.NotContains(t, name, ":")
}
