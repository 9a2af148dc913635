package service

import (
	"context"
	"fmt"
	"time"

	"github.com/apricitydigital/attendance-core/internal/apperr"
	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/repository"
)

// AttendanceService implements the Absent -> PunchedIn -> Completed state
// machine, including night-shift logical-date rollover and carry-forward of
// an still-open prior day onto a punch-out (spec.md §4.3).
type AttendanceService struct {
	repo         *repository.AttendanceRepository
	auditService *AuditService
	location     *time.Location
	rolloverHour int
}

// NewAttendanceService creates a new attendance service. rolloverHour is the
// hour-of-day (0-23) before which a punch is attributed to the previous
// logical date; tz is the timezone the rollover hour is evaluated in.
func NewAttendanceService(repo *repository.AttendanceRepository, auditService *AuditService, tz *time.Location, rolloverHour int) *AttendanceService {
	return &AttendanceService{repo: repo, auditService: auditService, location: tz, rolloverHour: rolloverHour}
}

// LogicalDate attributes a timestamp to a logical attendance date: a punch
// at or after the rollover hour belongs to that calendar day; a punch
// strictly before the rollover hour belongs to the previous calendar day
// (spec.md §4.3's night-shift rule, strict "<" comparison).
func (s *AttendanceService) LogicalDate(t time.Time) string {
	local := t.In(s.location)
	if local.Hour() < s.rolloverHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format("2006-01-02")
}

// PunchIn transitions an employee from Absent to PunchedIn for the logical
// date derived from req.Now.
func (s *AttendanceService) PunchIn(ctx context.Context, req domain.PunchRequest) (*domain.Attendance, error) {
	logicalDate := s.LogicalDate(req.Now)

	attendance, created, err := s.repo.GetOrCreateForPunchIn(ctx, req.EmpID, req.WardID, logicalDate)
	if err != nil {
		return nil, fmt.Errorf("get or create attendance: %w", err)
	}
	if !created && attendance.State() != domain.AttendanceAbsent {
		return nil, apperr.Validation("already_punched_in", "employee already has a punch-in recorded for this logical date")
	}

	now := req.Now
	attendance.PunchInTime = &now
	attendance.PunchInImage = req.ImageRef
	attendance.InAddress = req.Geo.Address
	attendance.LatitudeIn = req.Geo.Latitude
	attendance.LongitudeIn = req.Geo.Longitude
	attendance.PunchedInBy = req.ActorID

	if err := s.repo.RecordPunchIn(ctx, attendance); err != nil {
		if err == repository.ErrStaleTransition {
			return nil, apperr.Validation("already_punched_in", "employee already has a punch-in recorded for this logical date")
		}
		return nil, fmt.Errorf("record punch in: %w", err)
	}

	s.auditService.LogPunch(ctx, req.ActorID, domain.AuditActionAttendancePunchIn, attendance.ID, domain.AuditOutcomeSuccess, map[string]interface{}{
		"emp_id":       req.EmpID,
		"logical_date": logicalDate,
	})

	return attendance, nil
}

// PunchOut transitions an employee from PunchedIn to Completed. It first
// checks for an open prior-day record (carry-forward): a night-shift
// employee who punched in before midnight and punches out after the
// rollover hour closes that earlier row instead of opening a new one for
// today's logical date.
func (s *AttendanceService) PunchOut(ctx context.Context, req domain.PunchRequest) (*domain.Attendance, error) {
	logicalDate := s.LogicalDate(req.Now)

	attendance, err := s.repo.OpenPriorDay(ctx, req.EmpID, logicalDate)
	if err != nil {
		return nil, fmt.Errorf("check carry-forward: %w", err)
	}
	if attendance == nil {
		attendance, err = s.repo.GetByEmpAndDate(ctx, req.EmpID, logicalDate)
		if err != nil {
			return nil, fmt.Errorf("get attendance: %w", err)
		}
	}

	if attendance == nil || attendance.State() == domain.AttendanceAbsent {
		return nil, apperr.Validation("not_punched_in", "employee has no open punch-in to close")
	}
	if attendance.State() == domain.AttendanceCompleted {
		return nil, apperr.Validation("already_punched_out", "employee has already punched out for this record")
	}

	now := req.Now
	attendance.PunchOutTime = &now
	attendance.PunchOutImage = req.ImageRef
	attendance.OutAddress = req.Geo.Address
	attendance.LatitudeOut = req.Geo.Latitude
	attendance.LongitudeOut = req.Geo.Longitude
	attendance.PunchedOutBy = req.ActorID

	if err := s.repo.RecordPunchOut(ctx, attendance); err != nil {
		if err == repository.ErrStaleTransition {
			return nil, apperr.Validation("already_punched_out", "employee has already punched out for this record")
		}
		return nil, fmt.Errorf("record punch out: %w", err)
	}

	s.auditService.LogPunch(ctx, req.ActorID, domain.AuditActionAttendancePunchOut, attendance.ID, domain.AuditOutcomeSuccess, map[string]interface{}{
		"emp_id":       req.EmpID,
		"logical_date": attendance.LogicalDate,
	})

	return attendance, nil
}

// Get retrieves an employee's attendance record for a logical date.
func (s *AttendanceService) Get(ctx context.Context, empID int64, logicalDate string) (*domain.Attendance, error) {
	return s.repo.GetByEmpAndDate(ctx, empID, logicalDate)
}

