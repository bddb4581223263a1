package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// RideRepository handles database operations for rides
type RideRepository struct {
	db *sql.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{db: db}
}

const rideColumns = `id, code, title, description, start_time, created_by_user_id, is_active, route_id, visibility, created_at, updated_at`

// Create inserts a new ride
func (r *RideRepository) Create(ride *models.Ride) (*models.Ride, error) {
	now := time.Now().UTC()
	ride.CreatedAt = now
	ride.UpdatedAt = now

	res, err := r.db.Exec(
		`INSERT INTO rides (code, title, description, start_time, created_by_user_id, is_active, route_id, visibility, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ride.Code, ride.Title, ride.Description, ride.StartTime, ride.CreatedByUserID,
		ride.IsActive, ride.RouteID, ride.Visibility, ride.CreatedAt, ride.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ride: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get ride id: %w", err)
	}
	ride.ID = id
	return ride, nil
}

// GetByID retrieves a ride by ID; returns nil when not found
func (r *RideRepository) GetByID(id int64) (*models.Ride, error) {
	return r.scanOne(`SELECT `+rideColumns+` FROM rides WHERE id = ?`, id)
}

// GetByCode retrieves a ride by its join code; returns nil when not found
func (r *RideRepository) GetByCode(code string) (*models.Ride, error) {
	return r.scanOne(`SELECT `+rideColumns+` FROM rides WHERE code = ?`, code)
}

// List retrieves all rides, newest start first
func (r *RideRepository) List() ([]models.Ride, error) {
	return r.scanMany(`SELECT ` + rideColumns + ` FROM rides ORDER BY start_time DESC`)
}

// ListOwned retrieves rides created by the given user
func (r *RideRepository) ListOwned(userID int64) ([]models.Ride, error) {
	return r.scanMany(`SELECT `+rideColumns+` FROM rides WHERE created_by_user_id = ? ORDER BY start_time DESC`, userID)
}

// ListJoined retrieves rides the given user participates in
func (r *RideRepository) ListJoined(userID int64) ([]models.Ride, error) {
	return r.scanMany(
		`SELECT `+rideColumnsPrefixed("r")+` FROM rides r
		 JOIN participations p ON p.ride_id = r.id
		 WHERE p.user_id = ? ORDER BY r.start_time DESC`, userID)
}

// ListAvailable retrieves active rides the given user has not joined
func (r *RideRepository) ListAvailable(userID int64) ([]models.Ride, error) {
	return r.scanMany(
		`SELECT `+rideColumns+` FROM rides
		 WHERE is_active = 1 AND id NOT IN (SELECT ride_id FROM participations WHERE user_id = ?)
		 ORDER BY start_time DESC`, userID)
}

// Update persists mutable ride fields
func (r *RideRepository) Update(ride *models.Ride) error {
	ride.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE rides SET title = ?, description = ?, start_time = ?, is_active = ?, route_id = ?, visibility = ?, updated_at = ? WHERE id = ?`,
		ride.Title, ride.Description, ride.StartTime, ride.IsActive, ride.RouteID, ride.Visibility, ride.UpdatedAt, ride.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ride: %w", err)
	}
	return nil
}

// Delete removes a ride; participations cascade
func (r *RideRepository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM rides WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}
	return nil
}

func (r *RideRepository) scanOne(query string, args ...interface{}) (*models.Ride, error) {
	var ride models.Ride
	var routeID sql.NullInt64
	err := r.db.QueryRow(query, args...).Scan(
		&ride.ID, &ride.Code, &ride.Title, &ride.Description, &ride.StartTime,
		&ride.CreatedByUserID, &ride.IsActive, &routeID, &ride.Visibility,
		&ride.CreatedAt, &ride.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ride: %w", err)
	}
	if routeID.Valid {
		ride.RouteID = &routeID.Int64
	}
	return &ride, nil
}

func (r *RideRepository) scanMany(query string, args ...interface{}) ([]models.Ride, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	defer rows.Close()

	var rides []models.Ride
	for rows.Next() {
		var ride models.Ride
		var routeID sql.NullInt64
		err := rows.Scan(
			&ride.ID, &ride.Code, &ride.Title, &ride.Description, &ride.StartTime,
			&ride.CreatedByUserID, &ride.IsActive, &routeID, &ride.Visibility,
			&ride.CreatedAt, &ride.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ride: %w", err)
		}
		if routeID.Valid {
			ride.RouteID = &routeID.Int64
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

func rideColumnsPrefixed(alias string) string {
	return alias + ".id, " + alias + ".code, " + alias + ".title, " + alias + ".description, " +
		alias + ".start_time, " + alias + ".created_by_user_id, " + alias + ".is_active, " +
		alias + ".route_id, " + alias + ".visibility, " + alias + ".created_at, " + alias + ".updated_at"
}
