package viewport

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/spatial"
)

// fitMarginDegrees is the fixed inset applied uniformly on all sides of a
// fit region, independent of participant count.
const fitMarginDegrees = 0.002

// View is the input to one evaluation cycle
type View struct {
	Participants  []models.Participant
	CurrentUserID int64
	Route         []spatial.Point
}

// Controller decides camera behavior on every roster change. It keeps the
// small sticky state needed for hysteresis: whether the camera has centered
// at least once, how many positioned participants the last fit covered, and
// whether the route overlay was part of that fit. One Controller belongs to
// one ride view; the state resets when the view is reopened.
type Controller struct {
	hasCenteredOnce bool
	lastFitCount    int
	routeIncluded   bool
}

// NewController creates a controller with fresh hysteresis state
func NewController() *Controller {
	return &Controller{}
}

// Reset clears the hysteresis state, e.g. when the viewed ride changes
func (c *Controller) Reset() {
	c.hasCenteredOnce = false
	c.lastFitCount = 0
	c.routeIncluded = false
}

// Evaluate computes the camera intents for the current view. visible is the
// renderer's currently displayed region; visibleOK is false when the
// renderer cannot report it. Returned intents are ordered: an optional pan
// first, then at most one fit. A single none intent means the camera must
// not move.
func (c *Controller) Evaluate(view View, visible s2.Rect, visibleOK bool) []Intent {
	positioned := positionedParticipants(view.Participants)

	if len(positioned) == 0 {
		c.lastFitCount = 0
		return []Intent{{Kind: KindNone}}
	}

	var me *models.Participant
	for i := range positioned {
		if positioned[i].UserID == view.CurrentUserID {
			me = &positioned[i]
			break
		}
	}

	var intents []Intent
	if me != nil {
		// Smooth re-center on self, every cycle, unconditionally.
		intents = append(intents, Intent{
			Kind:   KindPan,
			Target: s2.LatLngFromDegrees(*me.Latitude, *me.Longitude),
		})

		needFit := !c.hasCenteredOnce
		if !needFit && visibleOK {
			for i := range positioned {
				p := s2.LatLngFromDegrees(*positioned[i].Latitude, *positioned[i].Longitude)
				if !visible.ContainsLatLng(p) {
					needFit = true
					break
				}
			}
		}
		if needFit {
			intents = append(intents, c.fitIntent(positioned, view.Route))
		}
		c.hasCenteredOnce = true
	} else {
		// Without an own position there is nothing to pan to. Re-fitting on
		// every jitter from other riders would make the map unusable, so a
		// fit is issued only when the picture materially changed.
		needFit := !c.hasCenteredOnce ||
			len(positioned) > c.lastFitCount ||
			(len(view.Route) > 0 && !c.routeIncluded)
		if needFit {
			intents = append(intents, c.fitIntent(positioned, view.Route))
			c.hasCenteredOnce = true
		}
	}

	c.lastFitCount = len(positioned)
	return intents
}

// Apply evaluates the view and executes the resulting intents on the
// renderer. A renderer that is not yet initialized turns the whole cycle
// into a no-op; the next roster change re-triggers evaluation naturally.
func (c *Controller) Apply(view View, r Renderer) []Intent {
	if !r.Ready() {
		return nil
	}

	visible, ok := r.VisibleBounds()
	intents := c.Evaluate(view, visible, ok)
	for _, in := range intents {
		switch in.Kind {
		case KindPan:
			r.Pan(in.Target)
		case KindFit:
			if in.SinglePoint {
				r.Center(in.Target, in.Zoom)
			} else {
				r.Fit(in.Bounds)
			}
		}
	}
	return intents
}

// fitIntent computes the ideal region covering every positioned participant
// plus all route points, and records what the fit included.
func (c *Controller) fitIntent(positioned []models.Participant, route []spatial.Point) Intent {
	points := make([]s2.LatLng, 0, len(positioned)+len(route))
	for i := range positioned {
		points = append(points, s2.LatLngFromDegrees(*positioned[i].Latitude, *positioned[i].Longitude))
	}
	for _, rp := range route {
		points = append(points, s2.LatLngFromDegrees(rp.Lat, rp.Lon))
	}
	c.routeIncluded = len(route) > 0

	if len(points) == 1 {
		return Intent{
			Kind:        KindFit,
			Target:      points[0],
			SinglePoint: true,
			Zoom:        SinglePointZoom,
		}
	}

	rect := s2.RectFromLatLng(points[0])
	for _, p := range points[1:] {
		rect = rect.AddPoint(p)
	}
	margin := s2.LatLng{
		Lat: s1.Angle(fitMarginDegrees) * s1.Degree,
		Lng: s1.Angle(fitMarginDegrees) * s1.Degree,
	}
	return Intent{Kind: KindFit, Bounds: expandRect(rect, margin)}
}

// expandRect grows the rectangle by margin on each side. s2.Rect keeps this
// operation unexported (Rect.expanded); this mirrors that body exactly using
// the exported interval API, including the clamp to valid latitudes.
func expandRect(rect s2.Rect, margin s2.LatLng) s2.Rect {
	lat := rect.Lat.Expanded(margin.Lat.Radians())
	lng := rect.Lng.Expanded(margin.Lng.Radians())
	if lat.IsEmpty() || lng.IsEmpty() {
		return s2.EmptyRect()
	}
	return s2.Rect{
		Lat: lat.Intersection(r1.Interval{Lo: -math.Pi / 2, Hi: math.Pi / 2}),
		Lng: lng,
	}
}

func positionedParticipants(participants []models.Participant) []models.Participant {
	out := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.HasPosition() {
			out = append(out, p)
		}
	}
	return out
}
