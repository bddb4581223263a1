package realtime

import (
	"encoding/json"
	"time"
)

// Event names shared by client and server on the ride channel
const (
	EventJoinRide       = "join_ride"
	EventUpdateLocation = "update_location"
	EventLocationUpdate = "location_update"
)

// Envelope frames every message on the wire
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRidePayload subscribes the connection to one ride room.
// Joining is idempotent; re-sending it after a reconnect is safe.
type JoinRidePayload struct {
	RideCode string `json:"ride_code"`
}

// UpdateLocationPayload broadcasts one position change to the ride room
type UpdateLocationPayload struct {
	RideCode          string    `json:"ride_code"`
	UserID            int64     `json:"user_id"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	LocationTimestamp time.Time `json:"location_timestamp"`
}

func marshalEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
