package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/apricitydigital/attendance-core/internal/domain"
	"github.com/apricitydigital/attendance-core/internal/facematch"
	"github.com/apricitydigital/attendance-core/internal/imaging"
	"github.com/apricitydigital/attendance-core/internal/middleware"
	"github.com/apricitydigital/attendance-core/internal/objectstore"
	"github.com/apricitydigital/attendance-core/internal/repository"
	"github.com/apricitydigital/attendance-core/internal/service"
)

const maxPunchUploadBytes = 10 << 20 // 10MB, generous for a single phone-camera JPEG.

// AttendanceHandler serves the mobile/field punch surface (spec.md §4.4):
// plain get-or-create, non-face punch in/out, face-verified single and
// group punches, punch-image streaming, and face enrolment.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	punch      *service.PunchService
	employees  *repository.EmployeeRepository
	store      objectstore.Store
	face       facematch.Client
	logger     *slog.Logger
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(
	attendance *service.AttendanceService,
	punch *service.PunchService,
	employees *repository.EmployeeRepository,
	store objectstore.Store,
	face facematch.Client,
	logger *slog.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		punch:      punch,
		employees:  employees,
		store:      store,
		face:       face,
		logger:     logger,
	}
}

func (h *AttendanceHandler) lookupEmployee(w http.ResponseWriter, r *http.Request, empCode string) *domain.Employee {
	if empCode == "" {
		WriteError(w, http.StatusBadRequest, "missing_emp_code", "emp_code is required")
		return nil
	}
	employee, err := h.employees.GetByEmpCode(r.Context(), empCode)
	if err != nil {
		RespondError(w, err)
		return nil
	}
	if employee == nil {
		WriteError(w, http.StatusNotFound, "employee_not_found", "no employee with that emp_code")
		return nil
	}
	return employee
}

func parseGeo(r *http.Request) domain.GeoPoint {
	geo := domain.GeoPoint{Address: r.FormValue("address")}
	if lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64); err == nil {
		geo.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(r.FormValue("longitude"), 64); err == nil {
		geo.Longitude = &lon
	}
	return geo
}

func readUploadedImage(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// GetOrCreate returns today's (logical-date) attendance status for an
// employee, without creating a row until an actual punch occurs — Absent
// is the implicit, non-materialized state (spec.md §4.3).
func (h *AttendanceHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	empCode := r.URL.Query().Get("emp_code")
	employee := h.lookupEmployee(w, r, empCode)
	if employee == nil {
		return
	}

	logicalDate := h.attendance.LogicalDate(time.Now())
	record, err := h.attendance.Get(r.Context(), employee.ID, logicalDate)
	if err != nil {
		RespondError(w, err)
		return
	}
	if record == nil {
		WriteSuccess(w, map[string]interface{}{
			"emp_id":       employee.ID,
			"logical_date": logicalDate,
			"state":        domain.AttendanceAbsent,
		})
		return
	}
	WriteSuccess(w, record)
}

// Punch records a plain (non-face-verified) punch in/out, for the
// supervisor/operator-assisted flow where the phone camera captures proof
// but identity is already known from the logged-in session.
func (h *AttendanceHandler) Punch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPunchUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart form")
		return
	}

	employee := h.lookupEmployee(w, r, r.FormValue("emp_code"))
	if employee == nil {
		return
	}

	punchType := domain.PunchType(r.FormValue("type"))
	if punchType != domain.PunchIn && punchType != domain.PunchOut {
		WriteError(w, http.StatusBadRequest, "invalid_type", "type must be IN or OUT")
		return
	}

	image, err := readUploadedImage(r, "image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_image", "image file is required")
		return
	}
	normalized, err := imaging.Normalize(image)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "invalid_image", "could not decode captured image")
		return
	}

	now := time.Now()
	key := imaging.StoreKey(now, string(punchType), employee.EmpCode, employee.Name, "")
	ref, err := h.store.Put(r.Context(), key, "image/jpeg", normalized)
	if err != nil {
		RespondError(w, err)
		return
	}

	req := domain.PunchRequest{
		EmpID:    employee.ID,
		WardID:   employee.WardID,
		Type:     punchType,
		Geo:      parseGeo(r),
		ImageRef: ref,
		ActorID:  middleware.GetUserID(r.Context()),
		Now:      now,
	}

	var record *domain.Attendance
	if punchType == domain.PunchIn {
		record, err = h.attendance.PunchIn(r.Context(), req)
	} else {
		record, err = h.attendance.PunchOut(r.Context(), req)
	}
	if err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, record)
}

// FaceAttendance runs the face-verified punch pipeline, in either single
// or group mode depending on the "mode" form field (spec.md §4.4).
func (h *AttendanceHandler) FaceAttendance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPunchUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart form")
		return
	}

	punchType := domain.PunchType(r.FormValue("type"))
	if punchType != domain.PunchIn && punchType != domain.PunchOut {
		WriteError(w, http.StatusBadRequest, "invalid_type", "type must be IN or OUT")
		return
	}

	image, err := readUploadedImage(r, "image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_image", "image file is required")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	now := time.Now()
	geo := parseGeo(r)

	if r.FormValue("mode") == "group" {
		result, err := h.punch.GroupPunch(r.Context(), service.GroupPunchRequest{
			Type: punchType, Image: image, Geo: geo, ActorID: actorID, Now: now,
		})
		if err != nil {
			RespondError(w, err)
			return
		}
		WriteSuccess(w, result)
		return
	}

	record, err := h.punch.SinglePunch(r.Context(), service.SinglePunchRequest{
		Type: punchType, Image: image, Geo: geo, ActorID: actorID, Now: now,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	WriteSuccess(w, record)
}

// Image proxies a stored punch/enrolment image straight through, without
// buffering it fully in handler memory.
func (h *AttendanceHandler) Image(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		WriteError(w, http.StatusBadRequest, "missing_ref", "ref query parameter is required")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if err := h.store.Stream(r.Context(), ref, w); err != nil {
		h.logger.Error("failed to stream image", "ref", ref, "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "image not found")
		return
	}
}

// StoreFace enrolls a captured image as an employee's reference face
// (spec.md §3 invariant 5: ref and id are set together).
func (h *AttendanceHandler) StoreFace(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPunchUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_upload", "could not parse multipart form")
		return
	}

	employee := h.lookupEmployee(w, r, r.FormValue("emp_code"))
	if employee == nil {
		return
	}

	image, err := readUploadedImage(r, "image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_image", "image file is required")
		return
	}
	normalized, err := imaging.Normalize(image)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "invalid_image", "could not decode captured image")
		return
	}

	faceID, confidence, err := h.face.Index(r.Context(), normalized)
	if err != nil {
		RespondError(w, err)
		return
	}

	key := imaging.StoreKey(time.Now(), "enroll", employee.EmpCode, employee.Name, "")
	ref, err := h.store.Put(r.Context(), key, "image/jpeg", normalized)
	if err != nil {
		RespondError(w, err)
		return
	}

	if err := h.employees.Enroll(r.Context(), employee.ID, ref, faceID, &confidence); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"emp_id":     employee.ID,
		"face_id":    faceID,
		"confidence": confidence,
	})
}

// UnenrollFace clears an employee's face enrolment.
func (h *AttendanceHandler) UnenrollFace(w http.ResponseWriter, r *http.Request) {
	empID, err := parseID(r, "empId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "invalid employee id")
		return
	}

	if err := h.employees.Unenroll(r.Context(), empID); err != nil {
		RespondError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"status": "unenrolled"})
}
