package models

import "time"

// Participant role constants
const (
	RoleOrganizer = "organizer"
	RoleMember    = "member"
)

// Participation represents one user's membership in one ride,
// including their last reported position if any
type Participation struct {
	ID                int64      `json:"id" db:"id"`
	UserID            int64      `json:"user_id" db:"user_id"`
	RideID            int64      `json:"ride_id" db:"ride_id"`
	JoinedAt          time.Time  `json:"joined_at" db:"joined_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
	Latitude          *float64   `json:"latitude" db:"latitude"`
	Longitude         *float64   `json:"longitude" db:"longitude"`
	LocationTimestamp *time.Time `json:"location_timestamp,omitempty" db:"location_timestamp"`
}

// ParticipationCreate represents a join-ride request
type ParticipationCreate struct {
	RideCode string `json:"ride_code" binding:"required"`
}

// ParticipationUpdate represents a location write for one participation
type ParticipationUpdate struct {
	Latitude          float64   `json:"latitude" binding:"required"`
	Longitude         float64   `json:"longitude" binding:"required"`
	LocationTimestamp time.Time `json:"location_timestamp" binding:"required"`
}

// Participant is the snapshot record exposed to ride viewers: a participation
// joined with its user. Latitude/Longitude are nil when the participant has
// never reported a position.
type Participant struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Username          string     `json:"username"`
	Role              string     `json:"role"`
	JoinedAt          time.Time  `json:"joined_at"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	LocationTimestamp *time.Time `json:"location_timestamp"`
}

// HasPosition reports whether the participant has ever reported a position
func (p *Participant) HasPosition() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SetPosition overwrites the participant's position and observation time only
func (p *Participant) SetPosition(lat, lon float64, observedAt time.Time) {
	p.Latitude = &lat
	p.Longitude = &lon
	t := observedAt
	p.LocationTimestamp = &t
}

// LocationUpdate is a single streamed position delta for one participant
type LocationUpdate struct {
	UserID            int64     `json:"user_id"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	LocationTimestamp time.Time `json:"location_timestamp"`
}
