// Package realtime implements the client side of the per-ride event
// channel: a websocket connection that delivers location deltas in arrival
// order and reconnects transparently when the transport drops.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andreee-ff/saferide-go/internal/models"
)

// EventKind classifies events delivered to the channel owner
type EventKind int

const (
	// Connected is emitted on every successful connect, including
	// reconnects. Room membership does not survive a reconnect, so the
	// owner must re-issue join_ride on each one.
	Connected EventKind = iota
	Disconnected
	LocationUpdate
	// ChannelFailure is emitted when reconnecting keeps failing; the
	// channel still keeps trying.
	ChannelFailure
)

// Event is one occurrence on the ride channel. Update is set for
// LocationUpdate, Err for ChannelFailure.
type Event struct {
	Kind   EventKind
	Update models.LocationUpdate
	Err    error
}

// ErrClosed is returned by commands after the channel has been torn down
var ErrClosed = errors.New("realtime: channel closed")

// ErrNotConnected is returned by commands while the transport is down
var ErrNotConnected = errors.New("realtime: not connected")

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
	// failureThreshold is how many consecutive failed connect attempts are
	// tolerated silently before a ChannelFailure event is surfaced.
	failureThreshold = 5
)

// Channel is one logical event connection scoped to one ride view. It is
// acquired on view open and released with Close; it is never shared between
// views, so independent rosters (and tests) cannot collide on it.
type Channel struct {
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event

	mu   sync.Mutex
	conn *websocket.Conn

	done chan struct{}
}

// Dial opens the channel and starts the connect/read loop. The returned
// channel lives until Close is called or ctx is canceled.
func Dial(ctx context.Context, url string) *Channel {
	cctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		url:    url,
		ctx:    cctx,
		cancel: cancel,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Events returns the ordered event stream. The channel is closed after
// Close; events already delivered are never reordered or coalesced.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Close tears the channel down. No events are delivered afterwards.
func (c *Channel) Close() error {
	c.cancel()
	<-c.done
	return nil
}

// JoinRide subscribes this connection to the ride's room
func (c *Channel) JoinRide(rideCode string) error {
	return c.send(EventJoinRide, JoinRidePayload{RideCode: rideCode})
}

// UpdateLocation broadcasts the user's position to the ride room
func (c *Channel) UpdateLocation(rideCode string, userID int64, lat, lon float64, observedAt time.Time) error {
	return c.send(EventUpdateLocation, UpdateLocationPayload{
		RideCode:          rideCode,
		UserID:            userID,
		Latitude:          lat,
		Longitude:         lon,
		LocationTimestamp: observedAt,
	})
}

func (c *Channel) send(event string, payload interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrClosed
	default:
	}

	msg, err := marshalEnvelope(event, payload)
	if err != nil {
		return fmt.Errorf("realtime: marshal %s: %w", event, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *Channel) run() {
	defer close(c.done)
	defer close(c.events)

	backoff := initialBackoff
	failures := 0

	for {
		conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, c.url, nil)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			failures++
			if failures == failureThreshold {
				c.emit(Event{Kind: ChannelFailure, Err: fmt.Errorf("realtime: connect %s: %w", c.url, err)})
			}
			select {
			case <-time.After(backoff):
			case <-c.ctx.Done():
				return
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = initialBackoff
		failures = 0

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.emit(Event{Kind: Connected})
		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()

		if c.ctx.Err() != nil {
			return
		}
		c.emit(Event{Kind: Disconnected})
	}
}

// readLoop pumps incoming frames until the connection breaks or the
// channel is torn down
func (c *Channel) readLoop(conn *websocket.Conn) {
	closeOnCancel := make(chan struct{})
	go func() {
		select {
		case <-c.ctx.Done():
			conn.Close()
		case <-closeOnCancel:
		}
	}()
	defer close(closeOnCancel)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Printf("realtime: dropping malformed frame: %v", err)
			continue
		}
		if env.Event != EventLocationUpdate {
			continue
		}

		var update models.LocationUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			log.Printf("realtime: dropping malformed location_update: %v", err)
			continue
		}
		c.emit(Event{Kind: LocationUpdate, Update: update})
	}
}

func (c *Channel) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}
