package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, name string) *time.Location {
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestAttendanceServiceLogicalDate(t *testing.T) {
	kolkata := mustLocation(t, "Asia/Kolkata")
	svc := NewAttendanceService(nil, nil, kolkata, 4)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"before rollover rolls back a day", "2026-07-30T02:30:00+05:30", "2026-07-29"},
		{"exactly at rollover stays on the same day", "2026-07-30T04:00:00+05:30", "2026-07-30"},
		{"just before rollover rolls back", "2026-07-30T03:59:59+05:30", "2026-07-29"},
		{"mid-day stays on the same day", "2026-07-30T14:00:00+05:30", "2026-07-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := time.Parse(time.RFC3339, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.LogicalDate(ts))
		})
	}
}

func TestAttendanceServiceLogicalDateConvertsTimezone(t *testing.T) {
	kolkata := mustLocation(t, "Asia/Kolkata")
	svc := NewAttendanceService(nil, nil, kolkata, 4)

	// 22:00 UTC on the 29th is 03:30 IST on the 30th, still before the
	// 04:00 rollover, so it should be attributed to the 29th.
	ts, err := time.Parse(time.RFC3339, "2026-07-29T22:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-07-29", svc.LogicalDate(ts))
}

func TestAttendanceServiceLogicalDateZeroRollover(t *testing.T) {
	utc := time.UTC
	svc := NewAttendanceService(nil, nil, utc, 0)

	ts, err := time.Parse(time.RFC3339, "2026-07-30T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-07-30", svc.LogicalDate(ts))
}
