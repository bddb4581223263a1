// Package hub fans realtime location events out to ride rooms. It relays
// what clients broadcast; it holds no position authority and stores
// nothing.
package hub

import (
	"encoding/json"
	"log"

	"github.com/andreee-ff/saferide-go/internal/realtime"
)

type roomMessage struct {
	rideCode string
	payload  []byte
}

type subscription struct {
	client   *Client
	rideCode string
}

// Hub tracks connected clients and their ride room memberships. All state
// is owned by the run loop; registration, joins, and broadcasts are
// serialized through channels.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	broadcast   chan roomMessage
	rooms       map[string]map[*Client]bool
	memberships map[*Client]map[string]bool
}

// NewHub creates a hub; Run must be started on it
func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		broadcast:   make(chan roomMessage, 64),
		rooms:       make(map[string]map[*Client]bool),
		memberships: make(map[*Client]map[string]bool),
	}
}

// Run processes hub events until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.memberships[client] = make(map[string]bool)

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.subscribe:
			if _, ok := h.memberships[sub.client]; !ok {
				continue
			}
			// Joining twice is a no-op so clients can blindly re-join
			// after every reconnect.
			h.memberships[sub.client][sub.rideCode] = true
			if h.rooms[sub.rideCode] == nil {
				h.rooms[sub.rideCode] = make(map[*Client]bool)
			}
			h.rooms[sub.rideCode][sub.client] = true

		case msg := <-h.broadcast:
			// The sender receives its own echo; the optimistic local write
			// on the client makes re-applying it harmless.
			for client := range h.rooms[msg.rideCode] {
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	codes, ok := h.memberships[client]
	if !ok {
		return
	}
	for code := range codes {
		delete(h.rooms[code], client)
		if len(h.rooms[code]) == 0 {
			delete(h.rooms, code)
		}
	}
	delete(h.memberships, client)
	close(client.send)
}

// BroadcastLocation publishes one location_update to a ride room
func (h *Hub) BroadcastLocation(update realtime.UpdateLocationPayload) {
	data, err := json.Marshal(map[string]interface{}{
		"user_id":            update.UserID,
		"latitude":           update.Latitude,
		"longitude":          update.Longitude,
		"location_timestamp": update.LocationTimestamp,
	})
	if err != nil {
		log.Printf("hub: marshal location_update: %v", err)
		return
	}
	env, err := json.Marshal(realtime.Envelope{Event: realtime.EventLocationUpdate, Data: data})
	if err != nil {
		log.Printf("hub: marshal envelope: %v", err)
		return
	}
	h.broadcast <- roomMessage{rideCode: update.RideCode, payload: env}
}
