package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// ParticipationRepository handles database operations for ride participations
type ParticipationRepository struct {
	db *sql.DB
}

// NewParticipationRepository creates a new participation repository
func NewParticipationRepository(db *sql.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

const participationColumns = `id, user_id, ride_id, joined_at, updated_at, latitude, longitude, location_timestamp`

// Create inserts a new participation
func (r *ParticipationRepository) Create(userID, rideID int64) (*models.Participation, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		`INSERT INTO participations (user_id, ride_id, joined_at, updated_at) VALUES (?, ?, ?, ?)`,
		userID, rideID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert participation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get participation id: %w", err)
	}

	return &models.Participation{
		ID:        id,
		UserID:    userID,
		RideID:    rideID,
		JoinedAt:  now,
		UpdatedAt: now,
	}, nil
}

// GetByID retrieves a participation by ID; returns nil when not found
func (r *ParticipationRepository) GetByID(id int64) (*models.Participation, error) {
	row := r.db.QueryRow(`SELECT `+participationColumns+` FROM participations WHERE id = ?`, id)
	return scanParticipation(row)
}

// GetByUserAndRide retrieves one user's participation in one ride
func (r *ParticipationRepository) GetByUserAndRide(userID, rideID int64) (*models.Participation, error) {
	row := r.db.QueryRow(`SELECT `+participationColumns+` FROM participations WHERE user_id = ? AND ride_id = ?`, userID, rideID)
	return scanParticipation(row)
}

// ListByUser retrieves all participations of one user
func (r *ParticipationRepository) ListByUser(userID int64) ([]models.Participation, error) {
	rows, err := r.db.Query(`SELECT `+participationColumns+` FROM participations WHERE user_id = ? ORDER BY joined_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participations: %w", err)
	}
	defer rows.Close()

	var out []models.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// ListParticipants retrieves the participant snapshot for a ride: every
// participation joined with its user, organizer first, join order after.
// The ordering is part of the API contract consumed by marker labeling.
func (r *ParticipationRepository) ListParticipants(rideID, organizerID int64) ([]models.Participant, error) {
	rows, err := r.db.Query(
		`SELECT p.id, p.user_id, u.username, p.joined_at, p.latitude, p.longitude, p.location_timestamp
		 FROM participations p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.ride_id = ?
		 ORDER BY (p.user_id != ?), p.joined_at, p.id`,
		rideID, organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var out []models.Participant
	for rows.Next() {
		var p models.Participant
		var lat, lon sql.NullFloat64
		var ts sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.JoinedAt, &lat, &lon, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if lat.Valid {
			p.Latitude = &lat.Float64
		}
		if lon.Valid {
			p.Longitude = &lon.Float64
		}
		if ts.Valid {
			p.LocationTimestamp = &ts.Time
		}
		p.Role = models.RoleMember
		if p.UserID == organizerID {
			p.Role = models.RoleOrganizer
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateLocation overwrites the stored position of one participation
func (r *ParticipationRepository) UpdateLocation(id int64, lat, lon float64, observedAt time.Time) (*models.Participation, error) {
	now := time.Now().UTC()
	_, err := r.db.Exec(
		`UPDATE participations SET latitude = ?, longitude = ?, location_timestamp = ?, updated_at = ? WHERE id = ?`,
		lat, lon, observedAt.UTC(), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	return r.GetByID(id)
}

// Delete removes a participation
func (r *ParticipationRepository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM participations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete participation: %w", err)
	}
	return nil
}

// CountByRide returns the number of participations in a ride
func (r *ParticipationRepository) CountByRide(rideID int64) (int64, error) {
	var n int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM participations WHERE ride_id = ?`, rideID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count participations: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanParticipation(row rowScanner) (*models.Participation, error) {
	var p models.Participation
	var lat, lon sql.NullFloat64
	var ts sql.NullTime
	err := row.Scan(&p.ID, &p.UserID, &p.RideID, &p.JoinedAt, &p.UpdatedAt, &lat, &lon, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan participation: %w", err)
	}
	if lat.Valid {
		p.Latitude = &lat.Float64
	}
	if lon.Valid {
		p.Longitude = &lon.Float64
	}
	if ts.Valid {
		p.LocationTimestamp = &ts.Time
	}
	return &p, nil
}
