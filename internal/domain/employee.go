package domain

import "time"

// Employee is a field worker who is punched in/out but never authenticates
// directly. FaceEmbeddingRef and FaceID are set together on enrolment and
// cleared together on un-enrolment (spec.md §3 invariant 5).
type Employee struct {
	ID               int64     `json:"emp_id"`
	EmpCode          string    `json:"emp_code"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone,omitempty"`
	WardID           int64     `json:"ward_id"`
	DesignationID    *int64    `json:"designation_id,omitempty"`
	FaceEmbeddingRef string    `json:"face_embedding_ref,omitempty"`
	FaceID           string    `json:"face_id,omitempty"`
	FaceConfidence   *float64  `json:"face_confidence,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Enrolled reports whether the employee has a usable face enrolment.
func (e Employee) Enrolled() bool {
	return e.FaceEmbeddingRef != "" && e.FaceID != ""
}

// EmployeeInput is the payload for creating/updating an employee.
type EmployeeInput struct {
	EmpCode       string `json:"emp_code"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	WardID        int64  `json:"ward_id"`
	DesignationID *int64 `json:"designation_id,omitempty"`
}

// SupervisorWard assigns a supervising user to a ward they oversee.
type SupervisorWard struct {
	ID           int64     `json:"assigned_id"`
	SupervisorID int64     `json:"supervisor_id"`
	WardID       int64     `json:"ward_id"`
	CreatedAt    time.Time `json:"created_at"`
}
