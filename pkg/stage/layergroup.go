// Package stage implements the multi-viewport synchronization engine: layer
// groups (viewport state holders), binders (per-signal synchronization
// strategies), and the stage that cross-wires them with loop suppression.
package stage

import (
	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
)

// bubbledTypes are the view events a layer group re-fires on its own
// emitter so peers can listen in one place.
var bubbledTypes = []event.Type{
	event.WLChange,
	event.WLPresetAdd,
	event.ColourChange,
	event.PositionChange,
	event.AlphaFuncChange,
}

// LayerGroup is one viewport's display state holder: an optional view plus
// zoom, pan offset, scale and opacity. It owns nothing but its own state;
// the surrounding application owns the group itself.
type LayerGroup struct {
	dataIndex int
	view      *view.View
	events    *event.Emitter

	scale   float64
	offset  geom.Point
	opacity float64

	// viewport pixel size, used for fit-scale
	widthPx  int
	heightPx int

	bubbleIDs []event.ListenerID
}

// NewLayerGroup creates an empty layer group showing the data at dataIndex.
func NewLayerGroup(dataIndex int) *LayerGroup {
	return &LayerGroup{
		dataIndex: dataIndex,
		events:    event.NewEmitter(),
		scale:     1,
		opacity:   1,
		offset:    geom.NewPoint(0, 0),
	}
}

// DataIndex identifies the data this group displays.
func (g *LayerGroup) DataIndex() int { return g.dataIndex }

// Events returns the group's emitter. View events bubble onto it.
func (g *LayerGroup) Events() *event.Emitter { return g.events }

// View returns the attached view, nil if none.
func (g *LayerGroup) View() *view.View { return g.view }

// SetView attaches a view and bubbles its events onto the group emitter.
func (g *LayerGroup) SetView(v *view.View) {
	if g.view != nil {
		for i, t := range bubbledTypes {
			g.view.Events().Off(t, g.bubbleIDs[i])
		}
		g.bubbleIDs = nil
	}
	g.view = v
	if v == nil {
		return
	}
	for _, t := range bubbledTypes {
		id := v.Events().On(t, func(ev event.Event) { g.events.Fire(ev) })
		g.bubbleIDs = append(g.bubbleIDs, id)
	}
}

// SetViewportSize sets the on-screen pixel size used for fit-scale.
func (g *LayerGroup) SetViewportSize(w, h int) {
	g.widthPx = w
	g.heightPx = h
}

// SetWindowLevel applies a window/level to the attached view.
func (g *LayerGroup) SetWindowLevel(center, width float64) {
	if g.view == nil {
		return
	}
	g.view.SetWindowLevel(center, width, "", false)
}

// SetCurrentPosition moves the attached view.
func (g *LayerGroup) SetCurrentPosition(pos geom.Point) bool {
	if g.view == nil {
		return false
	}
	return g.view.SetCurrentPosition(pos, false)
}

// Scale returns the current zoom scale.
func (g *LayerGroup) Scale() float64 { return g.scale }

// SetScale applies a scale without notifying. Used by the stage's fit-scale
// synchronization, which must not re-enter the binder wiring.
func (g *LayerGroup) SetScale(s float64) { g.scale = s }

// SetZoom applies a scale around a world point and fires zoomchange.
func (g *LayerGroup) SetZoom(scale float64, center geom.Point) {
	g.scale = scale
	g.events.Fire(event.Event{Type: event.ZoomChange, Scale: scale, Center: center})
}

// Offset returns the current pan offset.
func (g *LayerGroup) Offset() geom.Point { return g.offset }

// SetOffset applies a pan offset and fires offsetchange.
func (g *LayerGroup) SetOffset(o geom.Point) {
	g.offset = o
	g.events.Fire(event.Event{Type: event.OffsetChange, Offset: o})
}

// Opacity returns the group opacity in [0,1].
func (g *LayerGroup) Opacity() float64 { return g.opacity }

// SetOpacity applies a clamped opacity and fires opacitychange.
func (g *LayerGroup) SetOpacity(a float64) {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	g.opacity = a
	g.events.Fire(event.Event{Type: event.OpacityChange, Alpha: a, DataIndex: g.dataIndex})
}

// FitScale returns the scale that fits the view's world extent into the
// viewport, and false when the group has no content or no viewport size.
func (g *LayerGroup) FitScale() (float64, bool) {
	if g.view == nil || g.widthPx == 0 || g.heightPx == 0 {
		return 0, false
	}
	geo := g.view.Image().Geometry()
	size := geo.Size()
	spacing := geo.Spacing()
	worldW := float64(size[0]) * spacing[0]
	worldH := float64(size[1]) * spacing[1]
	if worldW <= 0 || worldH <= 0 {
		return 0, false
	}
	sx := float64(g.widthPx) / worldW
	sy := float64(g.heightPx) / worldH
	if sy < sx {
		return sy, true
	}
	return sx, true
}
