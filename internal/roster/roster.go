// Package roster holds the authoritative in-memory participant set for the
// currently viewed ride. It reconciles two independently arriving sources,
// a point-in-time REST snapshot and an unordered stream of position deltas,
// into one consistent view of who is where and how fresh.
package roster

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/realtime"
)

// maxPendingDeltas bounds the buffer for deltas that arrive before the
// snapshot resolves. When it overflows the oldest entry is discarded, which
// keeps the latest-applied-wins property intact.
const maxPendingDeltas = 256

// API is the slice of the backend REST surface the roster needs
type API interface {
	RideParticipants(ctx context.Context, rideID int64) ([]models.Participant, error)
	MyParticipations(ctx context.Context) ([]models.Participation, error)
	UpdateLocation(ctx context.Context, participationID int64, update models.ParticipationUpdate) (*models.Participation, error)
}

// Stream is the realtime channel owned by the roster for its lifetime
type Stream interface {
	Events() <-chan realtime.Event
	JoinRide(rideCode string) error
	UpdateLocation(rideCode string, userID int64, lat, lon float64, observedAt time.Time) error
	Close() error
}

// Config wires a roster to its ride and collaborators
type Config struct {
	Ride          models.Ride
	CurrentUserID int64
	API           API
	Stream        Stream
}

type snapshotResult struct {
	participants []models.Participant
	mine         *models.Participation
	err          error
}

type ownLocation struct {
	lat, lon   float64
	observedAt time.Time
}

// Roster is a single-writer state machine: every mutation, snapshot
// replace, streamed delta, and optimistic own-location write, is applied by
// one event loop in strict arrival order. Reads take a copy. Closing the
// roster (or canceling the parent context) stops the loop, closes the
// stream, and turns every in-flight callback into a no-op, so a stale
// snapshot can never mutate a roster whose view has been torn down.
type Roster struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	snapshots chan snapshotResult
	locations chan ownLocation
	reloads   chan struct{}

	mu           sync.RWMutex
	participants []models.Participant
	mine         *models.Participation
	ready        bool

	pending []models.LocationUpdate

	changes chan struct{}
	errs    chan error
	done    chan struct{}
}

// Open starts the roster for one ride view: it kicks off the snapshot
// fetch, starts consuming the stream, and returns immediately. Deltas that
// race ahead of the snapshot are buffered and applied after it, in arrival
// order.
func Open(ctx context.Context, cfg Config) *Roster {
	rctx, cancel := context.WithCancel(ctx)
	r := &Roster{
		cfg:       cfg,
		ctx:       rctx,
		cancel:    cancel,
		snapshots: make(chan snapshotResult, 1),
		locations: make(chan ownLocation, 16),
		reloads:   make(chan struct{}, 1),
		changes:   make(chan struct{}, 1),
		errs:      make(chan error, 16),
		done:      make(chan struct{}),
	}
	go r.fetchSnapshot()
	go r.run()
	return r
}

// Close tears the roster down: the stream is closed, state is discarded,
// and no further deltas are applied
func (r *Roster) Close() {
	r.cancel()
	<-r.done
}

// Participants returns a copy of the current ordered roster
func (r *Roster) Participants() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// MyParticipation returns the current user's own participation record, or
// nil when the user is not a member of the ride
func (r *Roster) MyParticipation() *models.Participation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.mine == nil {
		return nil
	}
	m := *r.mine
	return &m
}

// Ready reports whether the initial snapshot has been applied
func (r *Roster) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Changes signals after every state change; notifications are
// level-triggered, the next read observes the latest state
func (r *Roster) Changes() <-chan struct{} {
	return r.changes
}

// Errors delivers surfaced, non-fatal failures: FetchError, WriteError,
// ChannelError
func (r *Roster) Errors() <-chan error {
	return r.errs
}

// Reload fetches a fresh snapshot. A fresh load always wins: on success it
// fully replaces the roster regardless of prior streamed state.
func (r *Roster) Reload() {
	select {
	case r.reloads <- struct{}{}:
	default:
	}
}

// RecordOwnLocation applies the user's position to the roster immediately,
// then persists and broadcasts it without waiting for either round trip.
// A failed persist surfaces as a WriteError and is not rolled back.
func (r *Roster) RecordOwnLocation(lat, lon float64, observedAt time.Time) {
	select {
	case r.locations <- ownLocation{lat: lat, lon: lon, observedAt: observedAt}:
	case <-r.ctx.Done():
	}
}

func (r *Roster) run() {
	defer close(r.done)
	defer r.cfg.Stream.Close()

	for {
		select {
		case <-r.ctx.Done():
			r.mu.Lock()
			r.participants = nil
			r.mine = nil
			r.ready = false
			r.mu.Unlock()
			return

		case ev, ok := <-r.cfg.Stream.Events():
			if !ok {
				continue
			}
			r.handleStreamEvent(ev)

		case snap := <-r.snapshots:
			r.applySnapshot(snap)

		case loc := <-r.locations:
			r.applyOwnLocation(loc)

		case <-r.reloads:
			go r.fetchSnapshot()
		}
	}
}

func (r *Roster) handleStreamEvent(ev realtime.Event) {
	switch ev.Kind {
	case realtime.Connected:
		// Room membership does not survive a reconnect.
		if err := r.cfg.Stream.JoinRide(r.cfg.Ride.Code); err != nil {
			log.Printf("roster: join_ride for %s failed: %v", r.cfg.Ride.Code, err)
		}
	case realtime.Disconnected:
		// Silent; the stream reconnects and re-joins on its own.
	case realtime.ChannelFailure:
		r.surface(&ChannelError{Err: ev.Err})
	case realtime.LocationUpdate:
		r.applyDelta(ev.Update)
	}
}

// applyDelta merges one streamed delta. Deltas are applied unconditionally,
// latest-applied-wins: realtime delivery order is assumed to reflect
// arrival order, and event timestamps are not monotonic across sources.
func (r *Roster) applyDelta(update models.LocationUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		if len(r.pending) >= maxPendingDeltas {
			r.pending = r.pending[1:]
		}
		r.pending = append(r.pending, update)
		return
	}

	if !r.mergeLocked(update) {
		// Unknown user_id: the participant joined after the snapshot. A
		// placeholder without a display name degrades the roster contract
		// more than a missed update, so the delta is dropped.
		return
	}
	r.notify()
}

// mergeLocked overwrites position and observation time on the matching
// participant, leaving every other field untouched. Returns false when the
// user is not in the roster.
func (r *Roster) mergeLocked(update models.LocationUpdate) bool {
	for i := range r.participants {
		if r.participants[i].UserID == update.UserID {
			r.participants[i].SetPosition(update.Latitude, update.Longitude, update.LocationTimestamp)
			return true
		}
	}
	return false
}

func (r *Roster) applySnapshot(snap snapshotResult) {
	if snap.err != nil {
		r.surface(&FetchError{RideID: r.cfg.Ride.ID, Err: snap.err})
		return
	}

	r.mu.Lock()
	r.participants = orderOrganizerFirst(snap.participants, r.cfg.Ride.CreatedByUserID)
	r.mine = snap.mine
	r.ready = true
	pending := r.pending
	r.pending = nil
	for _, update := range pending {
		r.mergeLocked(update)
	}
	r.mu.Unlock()

	r.notify()
}

func (r *Roster) applyOwnLocation(loc ownLocation) {
	update := models.LocationUpdate{
		UserID:            r.cfg.CurrentUserID,
		Latitude:          loc.lat,
		Longitude:         loc.lon,
		LocationTimestamp: loc.observedAt,
	}

	r.mu.Lock()
	merged := r.ready && r.mergeLocked(update)
	mine := r.mine
	r.mu.Unlock()

	if merged {
		r.notify()
	}
	if mine == nil {
		return
	}

	// Fire and forget: the UI already reflects the change.
	go r.writeThrough(mine.ID, loc)
}

// writeThrough persists the position and broadcasts it on the channel. The
// broadcast echo arriving back through the stream re-applies the same
// position, which is harmless.
func (r *Roster) writeThrough(participationID int64, loc ownLocation) {
	_, err := r.cfg.API.UpdateLocation(r.ctx, participationID, models.ParticipationUpdate{
		Latitude:          loc.lat,
		Longitude:         loc.lon,
		LocationTimestamp: loc.observedAt,
	})
	if err != nil && r.ctx.Err() == nil {
		r.surface(&WriteError{ParticipationID: participationID, Err: err})
	}

	err = r.cfg.Stream.UpdateLocation(r.cfg.Ride.Code, r.cfg.CurrentUserID, loc.lat, loc.lon, loc.observedAt)
	if err != nil && r.ctx.Err() == nil {
		log.Printf("roster: broadcast own location failed: %v", err)
	}
}

func (r *Roster) fetchSnapshot() {
	participants, err := r.cfg.API.RideParticipants(r.ctx, r.cfg.Ride.ID)
	if err != nil {
		r.deliverSnapshot(snapshotResult{err: err})
		return
	}

	var mine *models.Participation
	all, err := r.cfg.API.MyParticipations(r.ctx)
	if err != nil {
		// The participant list is still usable without the caller's own
		// record; degrade instead of failing the whole load.
		log.Printf("roster: own participation fetch failed: %v", err)
	} else {
		for i := range all {
			if all[i].RideID == r.cfg.Ride.ID && all[i].UserID == r.cfg.CurrentUserID {
				mine = &all[i]
				break
			}
		}
	}

	r.deliverSnapshot(snapshotResult{participants: participants, mine: mine})
}

func (r *Roster) deliverSnapshot(snap snapshotResult) {
	select {
	case r.snapshots <- snap:
	case <-r.ctx.Done():
	}
}

func (r *Roster) notify() {
	select {
	case r.changes <- struct{}{}:
	default:
	}
}

func (r *Roster) surface(err error) {
	select {
	case r.errs <- err:
	default:
		log.Printf("roster: error dropped (consumer not draining): %v", err)
	}
}

// orderOrganizerFirst places the ride organizer at the head of the roster
// and preserves the received order of everyone else. The ordering is an
// exposed contract: the first entry drives marker labeling in the UI.
func orderOrganizerFirst(participants []models.Participant, organizerID int64) []models.Participant {
	out := make([]models.Participant, 0, len(participants))
	rest := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.UserID == organizerID {
			out = append(out, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(out, rest...)
}
