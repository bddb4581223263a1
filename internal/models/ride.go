package models

import "time"

// Route visibility constants control when a ride's route is revealed to members
const (
	VisibilityAlways = "always"
	VisibilityStart  = "start"
	VisibilitySecret = "secret"
)

// Ride represents a coordinated group ride with an organizer and members
type Ride struct {
	ID              int64     `json:"id" db:"id"`
	Code            string    `json:"code" db:"code"` // Short join code shared out of band
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	StartTime       time.Time `json:"start_time" db:"start_time"`
	CreatedByUserID int64     `json:"created_by_user_id" db:"created_by_user_id"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	RouteID         *int64    `json:"route_id" db:"route_id"`
	Visibility      string    `json:"visibility" db:"visibility"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// RideCreate represents a ride creation request
type RideCreate struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	RouteID     *int64    `json:"route_id"`
	Visibility  string    `json:"visibility"`
}

// RideUpdate represents a partial ride update; nil fields are left untouched
type RideUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	IsActive    *bool      `json:"is_active"`
	RouteID     *int64     `json:"route_id"`
	Visibility  *string    `json:"visibility"`
}
