package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/apricitydigital/attendance-core/internal/apperr"
	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/facematch"
	"github.com/apricitydigital/attendance-core/internal/imaging"
	"github.com/apricitydigital/attendance-core/internal/objectstore"
	"github.com/apricitydigital/attendance-core/internal/otel"
	"github.com/apricitydigital/attendance-core/internal/repository"
)

// PunchService implements the face-verified punch pipeline (spec.md §4.4):
// normalize, identify, verify, upload, transition.
type PunchService struct {
	employees  *repository.EmployeeRepository
	locations  *repository.LocationRepository
	attendance *AttendanceService
	face       facematch.Client
	store      objectstore.Store
	threshold  float64
	logger     *slog.Logger
}

// NewPunchService creates a new punch service. threshold is the minimum
// face-similarity percentage (0-100) required to accept a match.
func NewPunchService(
	employees *repository.EmployeeRepository,
	locations *repository.LocationRepository,
	attendance *AttendanceService,
	face facematch.Client,
	store objectstore.Store,
	threshold float64,
	logger *slog.Logger,
) *PunchService {
	return &PunchService{
		employees:  employees,
		locations:  locations,
		attendance: attendance,
		face:       face,
		store:      store,
		threshold:  threshold,
		logger:     logger,
	}
}

// SinglePunchRequest is the input to a single-employee face punch.
type SinglePunchRequest struct {
	Type     domain.PunchType
	Image    []byte
	Geo      domain.GeoPoint
	ActorID  *int64
	Now      time.Time
}

// GroupPunchRequest is the input to a group-mode face punch covering one
// captured frame with potentially many faces.
type GroupPunchRequest struct {
	Type    domain.PunchType
	Image   []byte
	Geo     domain.GeoPoint
	ActorID *int64
	Now     time.Time
}

// SinglePunch runs the full pipeline against one captured frame expected to
// contain exactly one recognizable employee.
func (s *PunchService) SinglePunch(ctx context.Context, req SinglePunchRequest) (*domain.Attendance, error) {
	normCtx, normSpan := otel.StartStage(ctx, "normalize", 0)
	normalized, err := imaging.Normalize(req.Image)
	normSpan.End()
	if err != nil {
		return nil, apperr.Unprocessable("invalid_image", "could not decode captured image")
	}

	identifyCtx, identifySpan := otel.StartStage(normCtx, "identify", 0)
	match, err := s.face.Search(identifyCtx, normalized)
	if err != nil {
		identifySpan.End()
		return nil, apperr.Upstream("face_service_error", err)
	}
	if match == nil || match.Similarity < s.threshold {
		identifySpan.End()
		return nil, apperr.Unprocessable("face_not_recognized", "no enrolled employee matched the captured image")
	}

	employee, err := s.employees.GetByFaceID(identifyCtx, match.FaceID)
	identifySpan.End()
	if err != nil {
		return nil, apperr.Internal("lookup_employee_failed", err)
	}
	if employee == nil {
		return nil, apperr.Unprocessable("face_not_recognized", "matched face is not linked to an employee")
	}

	verifyCtx, verifySpan := otel.StartStage(ctx, "verify", employee.ID)
	similarity, err := s.verify(verifyCtx, employee, normalized)
	verifySpan.End()
	if err != nil {
		return nil, err
	}
	if similarity < s.threshold {
		return nil, apperr.Unprocessable("face_verification_failed", "captured image did not match the enrolled reference closely enough")
	}

	ward, err := s.locations.GetWard(ctx, employee.WardID)
	if err != nil {
		return nil, apperr.Internal("lookup_ward_failed", err)
	}
	locationName := ""
	if ward != nil {
		locationName = ward.Name
	}

	uploadCtx, uploadSpan := otel.StartStage(ctx, "upload", employee.ID)
	imageRef, err := s.persistImage(uploadCtx, normalized, req.Type, employee, locationName, req.Now)
	uploadSpan.End()
	if err != nil {
		return nil, err
	}

	punchReq := domain.PunchRequest{
		EmpID:    employee.ID,
		WardID:   employee.WardID,
		Type:     req.Type,
		Geo:      req.Geo,
		ImageRef: imageRef,
		ActorID:  req.ActorID,
		Now:      req.Now,
	}

	transitionCtx, transitionSpan := otel.StartStage(ctx, "transition", employee.ID)
	defer transitionSpan.End()
	if req.Type == domain.PunchIn {
		return s.attendance.PunchIn(transitionCtx, punchReq)
	}
	return s.attendance.PunchOut(transitionCtx, punchReq)
}

// verify fetches the employee's enrolled reference image and runs a
// pairwise compare against the captured image (spec.md §4.4 step 3).
// Missing enrolment maps to 412 per spec.
func (s *PunchService) verify(ctx context.Context, employee *domain.Employee, captured []byte) (float64, error) {
	if !employee.Enrolled() {
		return 0, apperr.PreconditionFailed("face_enrollment_missing", "employee has no face enrolment on file")
	}

	if _, err := s.store.Get(ctx, employee.FaceEmbeddingRef); err != nil {
		return 0, apperr.PreconditionFailed("face_enrollment_missing", "enrolled reference image could not be retrieved")
	}

	similarity, err := s.face.Compare(ctx, captured, employee.FaceID)
	if err != nil {
		return 0, apperr.Upstream("face_service_error", err)
	}
	return similarity, nil
}

func (s *PunchService) persistImage(ctx context.Context, image []byte, punchType domain.PunchType, employee *domain.Employee, locationName string, capturedAt time.Time) (string, error) {
	key := imaging.StoreKey(capturedAt, string(punchType), employee.EmpCode, employee.Name, locationName)
	ref, err := s.store.Put(ctx, key, "image/jpeg", image)
	if err != nil {
		return "", apperr.Internal("image_store_failed", err)
	}
	return ref, nil
}

// GroupPunch runs the pipeline against one frame that may contain many
// employees, producing a per-face outcome list (spec.md §4.4 steps 2-6).
func (s *PunchService) GroupPunch(ctx context.Context, req GroupPunchRequest) (*domain.GroupPunchResult, error) {
	normalized, err := imaging.Normalize(req.Image)
	if err != nil {
		return nil, apperr.Unprocessable("invalid_image", "could not decode captured image")
	}

	faces, err := s.face.Detect(ctx, normalized)
	if err != nil {
		return nil, apperr.Upstream("face_service_error", err)
	}

	result := &domain.GroupPunchResult{FaceCount: len(faces)}
	seen := make(map[int64]struct{})

	for _, face := range faces {
		outcome := s.processGroupFace(ctx, face, normalized, req, seen)
		if outcome.Status == domain.FaceOutcomePunched {
			result.PunchedCount++
		}
		result.Results = append(result.Results, outcome)
	}

	result.Success = result.PunchedCount > 0
	return result, nil
}

func (s *PunchService) processGroupFace(ctx context.Context, face facematch.DetectedFace, frame []byte, req GroupPunchRequest, seen map[int64]struct{}) domain.FaceOutcome {
	outcome := domain.FaceOutcome{FaceIndex: face.Index}

	crop, err := imaging.CropFace(frame, face.Box.X, face.Box.Y, face.Box.Width, face.Box.Height)
	if err != nil {
		outcome.Status = domain.FaceOutcomeError
		outcome.Message = "could not crop detected face"
		return outcome
	}

	match, err := s.face.Search(ctx, crop)
	if err != nil {
		outcome.Status = domain.FaceOutcomeError
		outcome.Message = "face service error"
		return outcome
	}
	if match == nil || match.Similarity < s.threshold {
		outcome.Status = domain.FaceOutcomeUnmatched
		return outcome
	}

	employee, err := s.employees.GetByFaceID(ctx, match.FaceID)
	if err != nil || employee == nil {
		outcome.Status = domain.FaceOutcomeUnmatched
		return outcome
	}

	if _, dup := seen[employee.ID]; dup {
		outcome.Status = domain.FaceOutcomeDuplicate
		outcome.EmployeeID = &employee.ID
		outcome.EmployeeName = employee.Name
		return outcome
	}
	seen[employee.ID] = struct{}{}

	outcome.EmployeeID = &employee.ID
	outcome.EmployeeName = employee.Name

	similarity, err := s.verify(ctx, employee, crop)
	if err != nil {
		outcome.Status = domain.FaceOutcomeSkipped
		outcome.Message = err.Error()
		return outcome
	}
	outcome.Similarity = &similarity
	if similarity < s.threshold {
		outcome.Status = domain.FaceOutcomeUnmatched
		return outcome
	}

	ward, err := s.locations.GetWard(ctx, employee.WardID)
	locationName := ""
	if err == nil && ward != nil {
		locationName = ward.Name
	}

	imageRef, err := s.persistImage(ctx, crop, req.Type, employee, locationName, req.Now)
	if err != nil {
		outcome.Status = domain.FaceOutcomeError
		outcome.Message = "could not store punch image"
		return outcome
	}

	punchReq := domain.PunchRequest{
		EmpID:    employee.ID,
		WardID:   employee.WardID,
		Type:     req.Type,
		Geo:      req.Geo,
		ImageRef: imageRef,
		ActorID:  req.ActorID,
		Now:      req.Now,
	}

	var attendance *domain.Attendance
	if req.Type == domain.PunchIn {
		attendance, err = s.attendance.PunchIn(ctx, punchReq)
	} else {
		attendance, err = s.attendance.PunchOut(ctx, punchReq)
	}
	if err != nil {
		outcome.Status = domain.FaceOutcomeSkipped
		outcome.Message = err.Error()
		return outcome
	}

	outcome.Status = domain.FaceOutcomePunched
	outcome.AttendanceID = &attendance.ID
	if req.Type == domain.PunchIn {
		outcome.PunchedAt = attendance.PunchInTime
	} else {
		outcome.PunchedAt = attendance.PunchOutTime
	}
	return outcome
}
