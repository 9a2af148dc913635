package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// RenderCSV writes a grouping's column descriptors as the header row,
// followed by one row per result, with every field quoted and embedded
// quotes doubled regardless of content, and null values rendered as empty
// strings (spec.md §4.5, §6).
func RenderCSV(grouping Grouping, rows []map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer

	header := make([]string, len(grouping.Columns))
	for i, col := range grouping.Columns {
		header[i] = col.Header
	}
	writeQuotedRow(&buf, header)

	for _, row := range rows {
		record := make([]string, len(grouping.Columns))
		for i, col := range grouping.Columns {
			record[i] = cellString(row[col.Key])
		}
		writeQuotedRow(&buf, record)
	}

	return buf.Bytes(), nil
}

// writeQuotedRow appends one RFC-4180 row to buf with every field wrapped
// in double quotes and embedded double quotes doubled, unconditionally —
// Go's encoding/csv only quotes a field when it contains a comma, quote, or
// newline, which doesn't satisfy spec.md's "all fields quoted" requirement.
func writeQuotedRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// FileName builds the report CSV filename
// attendance-<suffix>-report-<iso-timestamp>.csv, with colons and dots in
// the timestamp replaced by hyphens (spec.md §4.5).
func FileName(suffix string, generatedAt time.Time) string {
	ts := generatedAt.UTC().Format(time.RFC3339)
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return fmt.Sprintf("attendance-%s-report-%s.csv", suffix, ts)
}
