package models

import "time"

// Route represents a stored route with its raw GPX track
type Route struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	GPXData         string    `json:"gpx_data" db:"gpx_data"`
	DistanceMeters  float64   `json:"distance_meters" db:"distance_meters"`
	CreatedByUserID int64     `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// RouteCreate represents a route creation request
type RouteCreate struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	GPXData     string `json:"gpx_data" binding:"required"`
}

// RouteUpdate represents a partial route update
type RouteUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	GPXData     *string `json:"gpx_data"`
}
