package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// RouteRepository handles database operations for stored routes
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, title, description, gpx_data, distance_meters, created_by_user_id, created_at, updated_at`

// Create inserts a new route
func (r *RouteRepository) Create(route *models.Route) (*models.Route, error) {
	now := time.Now().UTC()
	route.CreatedAt = now
	route.UpdatedAt = now

	res, err := r.db.Exec(
		`INSERT INTO routes (title, description, gpx_data, distance_meters, created_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		route.Title, route.Description, route.GPXData, route.DistanceMeters,
		route.CreatedByUserID, route.CreatedAt, route.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert route: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get route id: %w", err)
	}
	route.ID = id
	return route, nil
}

// GetByID retrieves a route by ID; returns nil when not found
func (r *RouteRepository) GetByID(id int64) (*models.Route, error) {
	var route models.Route
	err := r.db.QueryRow(`SELECT `+routeColumns+` FROM routes WHERE id = ?`, id).Scan(
		&route.ID, &route.Title, &route.Description, &route.GPXData,
		&route.DistanceMeters, &route.CreatedByUserID, &route.CreatedAt, &route.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan route: %w", err)
	}
	return &route, nil
}

// List retrieves all routes, newest first
func (r *RouteRepository) List() ([]models.Route, error) {
	rows, err := r.db.Query(`SELECT ` + routeColumns + ` FROM routes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		var route models.Route
		err := rows.Scan(
			&route.ID, &route.Title, &route.Description, &route.GPXData,
			&route.DistanceMeters, &route.CreatedByUserID, &route.CreatedAt, &route.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// Update persists mutable route fields
func (r *RouteRepository) Update(route *models.Route) error {
	route.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE routes SET title = ?, description = ?, gpx_data = ?, distance_meters = ?, updated_at = ? WHERE id = ?`,
		route.Title, route.Description, route.GPXData, route.DistanceMeters, route.UpdatedAt, route.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update route: %w", err)
	}
	return nil
}

// Delete removes a route
func (r *RouteRepository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM routes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	return nil
}
