package main

import (
	"fmt"
	"io"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/andreee-ff/saferide-go/internal/viewport"
)

// termRenderer is a map surface for the terminal: instead of drawing tiles
// it keeps the rectangle a real map would display and prints every camera
// instruction it receives.
type termRenderer struct {
	out     io.Writer
	visible s2.Rect
	hasView bool
}

func newTermRenderer(out io.Writer) *termRenderer {
	return &termRenderer{out: out}
}

func (t *termRenderer) Ready() bool { return true }

func (t *termRenderer) VisibleBounds() (s2.Rect, bool) {
	return t.visible, t.hasView
}

func (t *termRenderer) Pan(target s2.LatLng) {
	if t.hasView {
		// Keep the viewport size, move its center.
		latSpan := t.visible.Lat.Length()
		lngSpan := t.visible.Lng.Length()
		t.visible = s2.RectFromCenterSize(target, s2.LatLng{Lat: s1.Angle(latSpan), Lng: s1.Angle(lngSpan)})
	} else {
		t.visible = s2.RectFromCenterSize(target, s2.LatLng{Lat: 0.01 * s1.Degree, Lng: 0.01 * s1.Degree})
		t.hasView = true
	}
	fmt.Fprintf(t.out, "camera: pan to %.5f,%.5f\n", target.Lat.Degrees(), target.Lng.Degrees())
}

func (t *termRenderer) Fit(bounds s2.Rect) {
	t.visible = bounds
	t.hasView = true
	lo, hi := bounds.Lo(), bounds.Hi()
	fmt.Fprintf(t.out, "camera: fit [%.5f,%.5f]..[%.5f,%.5f]\n",
		lo.Lat.Degrees(), lo.Lng.Degrees(), hi.Lat.Degrees(), hi.Lng.Degrees())
}

func (t *termRenderer) Center(target s2.LatLng, zoom int) {
	t.visible = s2.RectFromCenterSize(target, s2.LatLng{Lat: 0.01 * s1.Degree, Lng: 0.01 * s1.Degree})
	t.hasView = true
	fmt.Fprintf(t.out, "camera: center %.5f,%.5f zoom %d\n", target.Lat.Degrees(), target.Lng.Degrees(), zoom)
}

var _ viewport.Renderer = (*termRenderer)(nil)
