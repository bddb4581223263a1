package roster

import (
	"context"
	"time"
)

// PositionSource is the device geolocation boundary: it produces a point
// reading on demand and may fail or be denied.
type PositionSource interface {
	Current(ctx context.Context) (lat, lon float64, observedAt time.Time, err error)
}

// ReportFrom reads one position from the source and records it as the
// user's own location. A source failure surfaces as a GeolocationError and
// leaves every other participant's data untouched.
func (r *Roster) ReportFrom(ctx context.Context, source PositionSource) error {
	lat, lon, observedAt, err := source.Current(ctx)
	if err != nil {
		gerr := &GeolocationError{Err: err}
		r.surface(gerr)
		return gerr
	}
	r.RecordOwnLocation(lat, lon, observedAt)
	return nil
}
