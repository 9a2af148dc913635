package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// EmployeeRepository persists field-worker employee records and their face
// enrolment state (spec.md §3 invariant 5).
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var phone, faceRef, faceID sql.NullString
	var designationID sql.NullInt64
	var faceConfidence sql.NullFloat64

	err := row.Scan(
		&e.ID, &e.EmpCode, &e.Name, &phone, &e.WardID, &designationID,
		&faceRef, &faceID, &faceConfidence, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan employee: %w", err)
	}

	e.Phone = phone.String
	e.FaceEmbeddingRef = faceRef.String
	e.FaceID = faceID.String
	if designationID.Valid {
		e.DesignationID = &designationID.Int64
	}
	if faceConfidence.Valid {
		e.FaceConfidence = &faceConfidence.Float64
	}
	return &e, nil
}

const employeeColumns = `id, emp_code, name, phone, ward_id, designation_id, face_embedding_ref, face_id, face_confidence, created_at, updated_at`

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (emp_code, name, phone, ward_id, designation_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, e.EmpCode, e.Name, nullableString(e.Phone), e.WardID, nullableInt64(e.DesignationID)).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Get retrieves an employee by ID.
func (r *EmployeeRepository) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmpCode retrieves an employee by their employee code.
func (r *EmployeeRepository) GetByEmpCode(ctx context.Context, empCode string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE emp_code = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, empCode))
}

// GetByFaceID retrieves an employee by their enrolled face-service id,
// the lookup the punch pipeline uses once a gallery search resolves a
// candidate (spec.md §4.4 step 2).
func (r *EmployeeRepository) GetByFaceID(ctx context.Context, faceID string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE face_id = $1`
	return scanEmployee(r.db.QueryRowContext(ctx, query, faceID))
}

// ListByWard retrieves every employee assigned to a ward.
func (r *EmployeeRepository) ListByWard(ctx context.Context, wardID int64) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE ward_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, wardID)
	if err != nil {
		return nil, fmt.Errorf("query employees by ward: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ListEnrolledByWards retrieves every face-enrolled employee across a set of
// wards; used by group-mode punch to build the candidate-match pool
// (spec.md §4.4).
func (r *EmployeeRepository) ListEnrolledByWards(ctx context.Context, wardIDs []int64) ([]domain.Employee, error) {
	if len(wardIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + employeeColumns + ` FROM employees
		WHERE ward_id = ANY($1) AND face_embedding_ref <> '' AND face_id <> ''
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, int64Array(wardIDs))
	if err != nil {
		return nil, fmt.Errorf("query enrolled employees: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Update updates an employee's profile fields.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	query := `
		UPDATE employees SET name = $2, phone = $3, ward_id = $4, designation_id = $5, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Name, nullableString(e.Phone), e.WardID, nullableInt64(e.DesignationID))
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Enroll stores a face enrolment reference for an employee (spec.md §3
// invariant 5: ref and id are set together).
func (r *EmployeeRepository) Enroll(ctx context.Context, employeeID int64, faceEmbeddingRef, faceID string, confidence *float64) error {
	query := `
		UPDATE employees SET face_embedding_ref = $2, face_id = $3, face_confidence = $4, updated_at = NOW()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, employeeID, faceEmbeddingRef, faceID, nullableFloat64(confidence))
	if err != nil {
		return fmt.Errorf("enroll employee: %w", err)
	}
	return nil
}

// Unenroll clears an employee's face enrolment (ref and id cleared together).
func (r *EmployeeRepository) Unenroll(ctx context.Context, employeeID int64) error {
	query := `UPDATE employees SET face_embedding_ref = '', face_id = '', face_confidence = NULL, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, employeeID)
	if err != nil {
		return fmt.Errorf("unenroll employee: %w", err)
	}
	return nil
}

// Delete removes an employee.
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
