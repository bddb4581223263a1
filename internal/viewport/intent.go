package viewport

import "github.com/golang/geo/s2"

// Kind identifies the camera behavior requested from the renderer
type Kind string

const (
	KindNone Kind = "none"
	KindPan  Kind = "pan"
	KindFit  Kind = "fit"
)

// SinglePointZoom is the zoom level used when the fit region collapses to
// one point. Fitting a zero-area bounding box would produce a degenerate
// camera state, so a lone point is centered at a comfortable fixed zoom.
const SinglePointZoom = 15

// Intent is one camera instruction derived from the current roster state.
// A pan carries Target; a fit carries either Bounds (margin already applied)
// or, when SinglePoint is set, Target plus Zoom.
type Intent struct {
	Kind        Kind
	Target      s2.LatLng
	Bounds      s2.Rect
	SinglePoint bool
	Zoom        int
}

// Renderer is the contract the map surface must honor. VisibleBounds
// reports the currently displayed region; ok is false when the surface
// cannot answer yet.
type Renderer interface {
	Ready() bool
	VisibleBounds() (bounds s2.Rect, ok bool)
	Pan(target s2.LatLng)
	Fit(bounds s2.Rect)
	Center(target s2.LatLng, zoom int)
}
