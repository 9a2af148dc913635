package domain

import "time"

// AttendanceState is the derived state of an Attendance row; it is not
// itself a stored column, only a read-time projection of the punch times
// (spec.md §4.3).
type AttendanceState string

const (
	AttendanceAbsent     AttendanceState = "absent"
	AttendancePunchedIn  AttendanceState = "punched_in"
	AttendanceCompleted  AttendanceState = "completed"
)

// PunchType distinguishes the two punch events a transition can carry.
type PunchType string

const (
	PunchIn  PunchType = "IN"
	PunchOut PunchType = "OUT"
)

// Attendance is the per-(employee, logical-date) record; unique on
// (emp_id, logical_date) (spec.md §3).
type Attendance struct {
	ID             int64      `json:"attendance_id"`
	EmpID          int64      `json:"emp_id"`
	LogicalDate    string     `json:"logical_date"` // YYYY-MM-DD
	WardID         int64      `json:"ward_id"`
	PunchInTime    *time.Time `json:"punch_in_time,omitempty"`
	PunchOutTime   *time.Time `json:"punch_out_time,omitempty"`
	PunchInImage   string     `json:"punch_in_image_ref,omitempty"`
	PunchOutImage  string     `json:"punch_out_image_ref,omitempty"`
	LatitudeIn     *float64   `json:"latitude_in,omitempty"`
	LongitudeIn    *float64   `json:"longitude_in,omitempty"`
	LatitudeOut    *float64   `json:"latitude_out,omitempty"`
	LongitudeOut   *float64   `json:"longitude_out,omitempty"`
	InAddress      string     `json:"in_address,omitempty"`
	OutAddress     string     `json:"out_address,omitempty"`
	PunchedInBy    *int64     `json:"punched_in_by,omitempty"`
	PunchedOutBy   *int64     `json:"punched_out_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// State derives the current state from the punch time columns, per the
// three-state machine in spec.md §4.3.
func (a Attendance) State() AttendanceState {
	switch {
	case a.PunchInTime == nil:
		return AttendanceAbsent
	case a.PunchOutTime == nil:
		return AttendancePunchedIn
	default:
		return AttendanceCompleted
	}
}

// Duration returns the worked duration once both punches are recorded; it
// is nil for any row not yet Completed.
func (a Attendance) Duration() *time.Duration {
	if a.PunchInTime == nil || a.PunchOutTime == nil {
		return nil
	}
	d := a.PunchOutTime.Sub(*a.PunchInTime)
	return &d
}

// GeoPoint is a single punch's location capture.
type GeoPoint struct {
	Latitude  *float64
	Longitude *float64
	Address   string
}

// PunchRequest is the normalized input to the attendance state machine,
// assembled by the punch pipeline after face verification (or directly by
// the non-face punch endpoints).
type PunchRequest struct {
	EmpID    int64
	WardID   int64
	Type     PunchType
	Geo      GeoPoint
	ImageRef string
	ActorID  *int64
	Now      time.Time
}

// FaceOutcomeStatus is the per-face result code in a group-mode punch
// (spec.md §4.4).
type FaceOutcomeStatus string

const (
	FaceOutcomePunched   FaceOutcomeStatus = "punched"
	FaceOutcomeUnmatched FaceOutcomeStatus = "unmatched"
	FaceOutcomeDuplicate FaceOutcomeStatus = "duplicate"
	FaceOutcomeSkipped   FaceOutcomeStatus = "skipped"
	FaceOutcomeError     FaceOutcomeStatus = "error"
)

// FaceOutcome is one detected face's result within a group-mode punch
// response.
type FaceOutcome struct {
	FaceIndex     int               `json:"face_index"`
	Status        FaceOutcomeStatus `json:"status"`
	EmployeeID    *int64            `json:"employee_id,omitempty"`
	EmployeeName  string            `json:"employee_name,omitempty"`
	Similarity    *float64          `json:"similarity,omitempty"`
	AttendanceID  *int64            `json:"attendance_id,omitempty"`
	PunchedAt     *time.Time        `json:"punched_at,omitempty"`
	Message       string            `json:"message,omitempty"`
}

// GroupPunchResult is the overall response for a group-mode face punch.
type GroupPunchResult struct {
	Success      bool          `json:"success"`
	PunchedCount int           `json:"punched_count"`
	FaceCount    int           `json:"face_count"`
	Results      []FaceOutcome `json:"results"`
}
