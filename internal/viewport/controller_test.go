package viewport

import (
	"testing"
	"time"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreee-ff/saferide-go/internal/models"
	"github.com/andreee-ff/saferide-go/internal/spatial"
)

func positioned(userID int64, lat, lon float64) models.Participant {
	p := models.Participant{UserID: userID, Username: "u"}
	p.SetPosition(lat, lon, time.Now())
	return p
}

func unpositioned(userID int64) models.Participant {
	return models.Participant{UserID: userID, Username: "u"}
}

func rectAround(lat, lon, halfSize float64) s2.Rect {
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(lat-halfSize, lon-halfSize))
	return r.AddPoint(s2.LatLngFromDegrees(lat+halfSize, lon+halfSize))
}

func kinds(intents []Intent) []Kind {
	out := make([]Kind, len(intents))
	for i, in := range intents {
		out[i] = in.Kind
	}
	return out
}

func TestNoPositionsMeansNoMovement(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{unpositioned(1), unpositioned(2)},
		CurrentUserID: 1,
	}
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindNone}, kinds(intents))
}

func TestFirstCycleWithSelfPansAndFits(t *testing.T) {
	c := NewController()
	view := View{
		Participants: []models.Participant{
			positioned(1, 52.37, 4.90),
			positioned(2, 52.38, 4.91),
		},
		CurrentUserID: 1,
	}
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindPan, KindFit}, kinds(intents))
	assert.InDelta(t, 52.37, intents[0].Target.Lat.Degrees(), 1e-9)
	assert.InDelta(t, 4.90, intents[0].Target.Lng.Degrees(), 1e-9)
}

func TestSteadyStateOnlyPans(t *testing.T) {
	c := NewController()
	view := View{
		Participants: []models.Participant{
			positioned(1, 52.37, 4.90),
			positioned(2, 52.38, 4.91),
		},
		CurrentUserID: 1,
	}
	c.Evaluate(view, s2.EmptyRect(), false)

	// Everyone inside the visible region: pan only, no fit.
	visible := rectAround(52.375, 4.905, 0.05)
	intents := c.Evaluate(view, visible, true)
	require.Equal(t, []Kind{KindPan}, kinds(intents))
}

func TestParticipantLeavingViewTriggersFit(t *testing.T) {
	c := NewController()
	view := View{
		Participants: []models.Participant{
			positioned(1, 52.37, 4.90),
			positioned(2, 52.38, 4.91),
		},
		CurrentUserID: 1,
	}
	c.Evaluate(view, s2.EmptyRect(), false)

	view.Participants[1] = positioned(2, 53.50, 6.00)
	visible := rectAround(52.375, 4.905, 0.05)
	intents := c.Evaluate(view, visible, true)
	require.Equal(t, []Kind{KindPan, KindFit}, kinds(intents))

	// The fit covers both riders with the margin applied.
	bounds := intents[1].Bounds
	assert.True(t, bounds.ContainsLatLng(s2.LatLngFromDegrees(52.37, 4.90)))
	assert.True(t, bounds.ContainsLatLng(s2.LatLngFromDegrees(53.50, 6.00)))
}

func TestUnknownVisibleBoundsNeverRefits(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(1, 52.37, 4.90)},
		CurrentUserID: 1,
	}
	c.Evaluate(view, s2.EmptyRect(), false)

	// The renderer cannot report bounds; only the first centering may fit.
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindPan}, kinds(intents))
}

func TestLoneSelfCentersAtFixedZoom(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(1, 52.37, 4.90)},
		CurrentUserID: 1,
	}
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindPan, KindFit}, kinds(intents))
	assert.True(t, intents[1].SinglePoint)
	assert.Equal(t, SinglePointZoom, intents[1].Zoom)
}

func TestWithoutSelfFitsOnlyWhenPictureChanges(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(2, 52.38, 4.91)},
		CurrentUserID: 1, // viewer has no position
	}

	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindFit}, kinds(intents))

	// Same single rider moving around: no pan target, no re-fit.
	view.Participants[0] = positioned(2, 52.40, 4.95)
	intents = c.Evaluate(view, s2.EmptyRect(), false)
	assert.Empty(t, intents)

	// A new positioned rider grows the picture: fit again.
	view.Participants = append(view.Participants, positioned(3, 52.39, 4.92))
	intents = c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindFit}, kinds(intents))

	// Riders dropping back down does not re-fit.
	view.Participants = view.Participants[:1]
	intents = c.Evaluate(view, s2.EmptyRect(), false)
	assert.Empty(t, intents)
}

func TestWithoutSelfRouteAppearingTriggersFit(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(2, 52.38, 4.91)},
		CurrentUserID: 1,
	}
	c.Evaluate(view, s2.EmptyRect(), false)

	view.Route = []spatial.Point{{Lat: 52.36, Lon: 4.88}, {Lat: 52.40, Lon: 4.95}}
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindFit}, kinds(intents))

	bounds := intents[0].Bounds
	assert.True(t, bounds.ContainsLatLng(s2.LatLngFromDegrees(52.36, 4.88)))
	assert.True(t, bounds.ContainsLatLng(s2.LatLngFromDegrees(52.38, 4.91)))

	// Route now included: the same view does not fit again.
	intents = c.Evaluate(view, s2.EmptyRect(), false)
	assert.Empty(t, intents)
}

func TestRouteIncludedInFitWithSelf(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(1, 52.37, 4.90)},
		CurrentUserID: 1,
		Route:         []spatial.Point{{Lat: 52.30, Lon: 4.80}},
	}
	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindPan, KindFit}, kinds(intents))
	require.False(t, intents[1].SinglePoint)
	assert.True(t, intents[1].Bounds.ContainsLatLng(s2.LatLngFromDegrees(52.30, 4.80)))
}

func TestResetRestoresFirstCenteringBehavior(t *testing.T) {
	c := NewController()
	view := View{
		Participants:  []models.Participant{positioned(1, 52.37, 4.90)},
		CurrentUserID: 1,
	}
	c.Evaluate(view, s2.EmptyRect(), false)
	c.Reset()

	intents := c.Evaluate(view, s2.EmptyRect(), false)
	require.Equal(t, []Kind{KindPan, KindFit}, kinds(intents))
}

func TestApplySkipsUnreadyRenderer(t *testing.T) {
	c := NewController()
	r := &stubRenderer{ready: false}
	intents := c.Apply(View{
		Participants:  []models.Participant{positioned(1, 52.37, 4.90)},
		CurrentUserID: 1,
	}, r)
	assert.Nil(t, intents)
	assert.Zero(t, r.pans+r.fits+r.centers)
}

func TestApplyExecutesIntents(t *testing.T) {
	c := NewController()
	r := &stubRenderer{ready: true}
	c.Apply(View{
		Participants: []models.Participant{
			positioned(1, 52.37, 4.90),
			positioned(2, 52.38, 4.91),
		},
		CurrentUserID: 1,
	}, r)
	assert.Equal(t, 1, r.pans)
	assert.Equal(t, 1, r.fits)
}

type stubRenderer struct {
	ready   bool
	visible s2.Rect
	hasView bool
	pans    int
	fits    int
	centers int
}

func (s *stubRenderer) Ready() bool { return s.ready }

func (s *stubRenderer) VisibleBounds() (s2.Rect, bool) { return s.visible, s.hasView }

func (s *stubRenderer) Pan(s2.LatLng) { s.pans++ }

func (s *stubRenderer) Fit(s2.Rect) { s.fits++ }

func (s *stubRenderer) Center(s2.LatLng, int) { s.centers++ }
