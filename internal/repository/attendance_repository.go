package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// AttendanceRepository persists the per-(employee, logical-date) Attendance
// rows the state machine reads and writes (spec.md §3, §4.3).
type AttendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `
	id, emp_id, ward_id, logical_date, punch_in_time, punch_out_time,
	punch_in_image_ref, punch_out_image_ref, in_address, out_address,
	latitude_in, longitude_in, latitude_out, longitude_out,
	punched_in_by, punched_out_by, created_at, updated_at`

func scanAttendance(row rowScanner) (*domain.Attendance, error) {
	var a domain.Attendance
	var punchInImage, punchOutImage, inAddress, outAddress sql.NullString
	var latIn, lonIn, latOut, lonOut sql.NullFloat64
	var punchedInBy, punchedOutBy sql.NullInt64

	err := row.Scan(
		&a.ID, &a.EmpID, &a.WardID, &a.LogicalDate, &a.PunchInTime, &a.PunchOutTime,
		&punchInImage, &punchOutImage, &inAddress, &outAddress,
		&latIn, &lonIn, &latOut, &lonOut,
		&punchedInBy, &punchedOutBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan attendance: %w", err)
	}

	a.PunchInImage = punchInImage.String
	a.PunchOutImage = punchOutImage.String
	a.InAddress = inAddress.String
	a.OutAddress = outAddress.String
	if latIn.Valid {
		a.LatitudeIn = &latIn.Float64
	}
	if lonIn.Valid {
		a.LongitudeIn = &lonIn.Float64
	}
	if latOut.Valid {
		a.LatitudeOut = &latOut.Float64
	}
	if lonOut.Valid {
		a.LongitudeOut = &lonOut.Float64
	}
	if punchedInBy.Valid {
		a.PunchedInBy = &punchedInBy.Int64
	}
	if punchedOutBy.Valid {
		a.PunchedOutBy = &punchedOutBy.Int64
	}
	return &a, nil
}

// GetByEmpAndDate retrieves the attendance row for an employee on a logical
// date, or nil if no punch has been recorded yet (spec.md §4.3: Absent is
// the implicit, non-materialized state).
func (r *AttendanceRepository) GetByEmpAndDate(ctx context.Context, empID int64, logicalDate string) (*domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE emp_id = $1 AND logical_date = $2`
	return scanAttendance(r.db.QueryRowContext(ctx, query, empID, logicalDate))
}

// OpenPriorDay finds an employee's PunchedIn (punch_out_time IS NULL) row
// for the logical date immediately before the given one — the one-day
// carry-forward lookback a punch-out consults before the current day's row
// (spec.md §4.3's night-shift rollover/carry-forward rule).
func (r *AttendanceRepository) OpenPriorDay(ctx context.Context, empID int64, beforeLogicalDate string) (*domain.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + ` FROM attendance
		WHERE emp_id = $1 AND logical_date = $2::date - 1 AND punch_in_time IS NOT NULL AND punch_out_time IS NULL
		ORDER BY logical_date DESC
		LIMIT 1`
	return scanAttendance(r.db.QueryRowContext(ctx, query, empID, beforeLogicalDate))
}

// GetOrCreateForPunchIn creates a new Absent->PunchedIn row for
// (empID, logicalDate) if one doesn't already exist, returning the existing
// row otherwise so the caller can detect an already-punched-in conflict.
func (r *AttendanceRepository) GetOrCreateForPunchIn(ctx context.Context, empID, wardID int64, logicalDate string) (*domain.Attendance, bool, error) {
	existing, err := r.GetByEmpAndDate(ctx, empID, logicalDate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	query := `
		INSERT INTO attendance (emp_id, ward_id, logical_date, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (emp_id, logical_date) DO NOTHING
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(r.db.QueryRowContext(ctx, query, empID, wardID, logicalDate))
	if err != nil {
		return nil, false, err
	}
	if created != nil {
		return created, true, nil
	}

	// Lost the insert race to a concurrent punch-in; read back the winner.
	existing, err = r.GetByEmpAndDate(ctx, empID, logicalDate)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// ErrStaleTransition is returned by RecordPunchIn/RecordPunchOut when the
// row's state no longer matches the expected pre-transition state by the
// time the UPDATE runs — a concurrent punch won the race.
var ErrStaleTransition = fmt.Errorf("attendance row state changed before transition could be applied")

// RecordPunchIn transitions a row from Absent to PunchedIn. The WHERE
// clause requires punch_in_time still be NULL, so the database itself
// serializes concurrent punch-ins racing on the same row rather than
// relying solely on the app-level GetOrCreateForPunchIn check.
func (r *AttendanceRepository) RecordPunchIn(ctx context.Context, a *domain.Attendance) error {
	query := `
		UPDATE attendance SET
			punch_in_time = $2, punch_in_image_ref = $3, in_address = $4,
			latitude_in = $5, longitude_in = $6, punched_in_by = $7, updated_at = NOW()
		WHERE id = $1 AND punch_in_time IS NULL
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.PunchInTime, nullableString(a.PunchInImage), nullableString(a.InAddress),
		nullableFloat64(a.LatitudeIn), nullableFloat64(a.LongitudeIn), nullableInt64(a.PunchedInBy),
	).Scan(&a.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrStaleTransition
	}
	return err
}

// RecordPunchOut transitions a row from PunchedIn to Completed. The WHERE
// clause requires an open punch-in and no existing punch-out, so the
// database serializes concurrent punch-outs racing on the same row.
func (r *AttendanceRepository) RecordPunchOut(ctx context.Context, a *domain.Attendance) error {
	query := `
		UPDATE attendance SET
			punch_out_time = $2, punch_out_image_ref = $3, out_address = $4,
			latitude_out = $5, longitude_out = $6, punched_out_by = $7, updated_at = NOW()
		WHERE id = $1 AND punch_in_time IS NOT NULL AND punch_out_time IS NULL
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.PunchOutTime, nullableString(a.PunchOutImage), nullableString(a.OutAddress),
		nullableFloat64(a.LatitudeOut), nullableFloat64(a.LongitudeOut), nullableInt64(a.PunchedOutBy),
	).Scan(&a.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrStaleTransition
	}
	return err
}

// ListByWardAndDateRange retrieves attendance rows for reporting (spec.md
// §4.5's detail grouping, before scope/aggregation is applied).
func (r *AttendanceRepository) ListByWardAndDateRange(ctx context.Context, wardIDs []int64, from, to string) ([]domain.Attendance, error) {
	query := `
		SELECT ` + attendanceColumns + ` FROM attendance
		WHERE ward_id = ANY($1) AND logical_date BETWEEN $2 AND $3
		ORDER BY logical_date, ward_id, emp_id`
	rows, err := r.db.QueryContext(ctx, query, int64Array(wardIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("query attendance range: %w", err)
	}
	defer rows.Close()

	var out []domain.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
