package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// LocationRepository persists the City -> Zone -> Ward hierarchy and the
// flat Department/Designation lookups.
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListCities returns every city.
func (r *LocationRepository) ListCities(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var out []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCity retrieves a city by ID.
func (r *LocationRepository) GetCity(ctx context.Context, id int64) (*domain.City, error) {
	var c domain.City
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM cities WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query city: %w", err)
	}
	return &c, nil
}

// ListZonesByCity returns the zones belonging to a city.
func (r *LocationRepository) ListZonesByCity(ctx context.Context, cityID int64) ([]domain.Zone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, city_id, name, created_at, updated_at FROM zones WHERE city_id = $1 ORDER BY name`, cityID)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	var out []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.CityID, &z.Name, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// GetZone retrieves a zone by ID.
func (r *LocationRepository) GetZone(ctx context.Context, id int64) (*domain.Zone, error) {
	var z domain.Zone
	err := r.db.QueryRowContext(ctx, `SELECT id, city_id, name, created_at, updated_at FROM zones WHERE id = $1`, id).
		Scan(&z.ID, &z.CityID, &z.Name, &z.CreatedAt, &z.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query zone: %w", err)
	}
	return &z, nil
}

// ListWardsByZone returns the wards belonging to a zone.
func (r *LocationRepository) ListWardsByZone(ctx context.Context, zoneID int64) ([]domain.Ward, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, zone_id, name, created_at, updated_at FROM wards WHERE zone_id = $1 ORDER BY name`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("query wards: %w", err)
	}
	defer rows.Close()

	var out []domain.Ward
	for rows.Next() {
		var w domain.Ward
		if err := rows.Scan(&w.ID, &w.ZoneID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ward: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWard retrieves a ward by ID.
func (r *LocationRepository) GetWard(ctx context.Context, id int64) (*domain.Ward, error) {
	var w domain.Ward
	err := r.db.QueryRowContext(ctx, `SELECT id, zone_id, name, created_at, updated_at FROM wards WHERE id = $1`, id).
		Scan(&w.ID, &w.ZoneID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ward: %w", err)
	}
	return &w, nil
}

// WardCityID resolves a ward's ancestor city via its zone, the join the
// Scope Resolver uses to test ward-level rows against a city scope
// (spec.md §4.2 step 3).
func (r *LocationRepository) WardCityID(ctx context.Context, wardID int64) (int64, error) {
	var cityID int64
	query := `SELECT z.city_id FROM wards w JOIN zones z ON z.id = w.zone_id WHERE w.id = $1`
	err := r.db.QueryRowContext(ctx, query, wardID).Scan(&cityID)
	if err != nil {
		return 0, fmt.Errorf("resolve ward city: %w", err)
	}
	return cityID, nil
}

// ListDepartments returns every department.
func (r *LocationRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListDesignations returns every designation.
func (r *LocationRepository) ListDesignations(ctx context.Context) ([]domain.Designation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM designations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query designations: %w", err)
	}
	defer rows.Close()

	var out []domain.Designation
	for rows.Next() {
		var d domain.Designation
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan designation: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
