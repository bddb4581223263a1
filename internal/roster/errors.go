package roster

import "fmt"

// FetchError means the participant snapshot could not be loaded. It is
// non-fatal: the roster stays empty (or stale, on a reload) and the view
// keeps working on whatever data it has.
type FetchError struct {
	RideID int64
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("roster: snapshot load for ride %d failed: %v", e.RideID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError means persisting the user's own location failed. The
// optimistic local update is intentionally left in place; the failure is
// only surfaced.
type WriteError struct {
	ParticipationID int64
	Err             error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("roster: location write for participation %d failed: %v", e.ParticipationID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ChannelError means the realtime transport keeps failing to reconnect.
// Individual disconnects are handled silently by reconnect plus re-join.
type ChannelError struct {
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("roster: realtime channel failing: %v", e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// GeolocationError means the device position source was denied or
// unavailable. It never affects other participants' data.
type GeolocationError struct {
	Err error
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("roster: geolocation unavailable: %v", e.Err)
}

func (e *GeolocationError) Unwrap() error { return e.Err }
