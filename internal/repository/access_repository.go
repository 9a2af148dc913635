package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apricitydigital/attendance-core/internal/domain"
)

// AccessRepository persists the user<->city and user<->zone view-scope
// grants the Scope Resolver reads (spec.md §4.2 step 2).
type AccessRepository struct {
	db *sql.DB
}

// NewAccessRepository creates a new access repository.
func NewAccessRepository(db *sql.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// GrantCityAccess gives a user view scope over a city.
func (r *AccessRepository) GrantCityAccess(ctx context.Context, userID, cityID int64) error {
	query := `
		INSERT INTO user_city_access (user_id, city_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, city_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID, cityID)
	if err != nil {
		return fmt.Errorf("grant city access: %w", err)
	}
	return nil
}

// RevokeCityAccess removes a user's city scope grant.
func (r *AccessRepository) RevokeCityAccess(ctx context.Context, userID, cityID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_city_access WHERE user_id = $1 AND city_id = $2`, userID, cityID)
	if err != nil {
		return fmt.Errorf("revoke city access: %w", err)
	}
	return nil
}

// ListCityIDs returns the city ids a user has explicit access to.
func (r *AccessRepository) ListCityIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT city_id FROM user_city_access WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query city access: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan city id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GrantZoneAccess gives a user view scope over a zone.
func (r *AccessRepository) GrantZoneAccess(ctx context.Context, userID, zoneID int64) error {
	query := `
		INSERT INTO user_zone_access (user_id, zone_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, zone_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID, zoneID)
	if err != nil {
		return fmt.Errorf("grant zone access: %w", err)
	}
	return nil
}

// RevokeZoneAccess removes a user's zone scope grant.
func (r *AccessRepository) RevokeZoneAccess(ctx context.Context, userID, zoneID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_zone_access WHERE user_id = $1 AND zone_id = $2`, userID, zoneID)
	if err != nil {
		return fmt.Errorf("revoke zone access: %w", err)
	}
	return nil
}

// ListZoneIDs returns the zone ids a user has explicit access to.
func (r *AccessRepository) ListZoneIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT zone_id FROM user_zone_access WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query zone access: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan zone id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSupervisorWardIDs returns the ward ids a supervisor directly oversees.
func (r *AccessRepository) ListSupervisorWardIDs(ctx context.Context, supervisorID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ward_id FROM supervisor_wards WHERE supervisor_id = $1`, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("query supervisor wards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ward id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignSupervisorWard assigns a supervisor to a ward.
func (r *AccessRepository) AssignSupervisorWard(ctx context.Context, sw *domain.SupervisorWard) error {
	query := `
		INSERT INTO supervisor_wards (supervisor_id, ward_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (supervisor_id, ward_id) DO NOTHING
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, sw.SupervisorID, sw.WardID).Scan(&sw.ID, &sw.CreatedAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("assign supervisor ward: %w", err)
	}
	return nil
}

// RevokeSupervisorWard removes a supervisor's ward assignment.
func (r *AccessRepository) RevokeSupervisorWard(ctx context.Context, supervisorID, wardID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM supervisor_wards WHERE supervisor_id = $1 AND ward_id = $2`, supervisorID, wardID)
	if err != nil {
		return fmt.Errorf("revoke supervisor ward: %w", err)
	}
	return nil
}
