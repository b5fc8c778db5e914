package stage

import (
	"github.com/pkg/errors"

	"github.com/jpfielding/dcmview.go/pkg/event"
)

// Binder is a stateless synchronization strategy: it names the event type it
// reacts to and translates an event observed on one layer group into the
// equivalent state change on another.
type Binder interface {
	EventType() event.Type
	Apply(ev event.Event, target *LayerGroup)
}

// WindowLevelBinder synchronizes window/level across layer groups.
type WindowLevelBinder struct{}

func (WindowLevelBinder) EventType() event.Type { return event.WLChange }

func (WindowLevelBinder) Apply(ev event.Event, target *LayerGroup) {
	target.SetWindowLevel(ev.WC, ev.WW)
}

// PositionBinder synchronizes the current position across layer groups.
type PositionBinder struct{}

func (PositionBinder) EventType() event.Type { return event.PositionChange }

func (PositionBinder) Apply(ev event.Event, target *LayerGroup) {
	if !ev.Valid {
		return
	}
	target.SetCurrentPosition(ev.Position)
}

// ZoomBinder synchronizes zoom scale across layer groups.
type ZoomBinder struct{}

func (ZoomBinder) EventType() event.Type { return event.ZoomChange }

func (ZoomBinder) Apply(ev event.Event, target *LayerGroup) {
	target.SetZoom(ev.Scale, ev.Center)
}

// OffsetBinder synchronizes pan offsets across layer groups.
type OffsetBinder struct{}

func (OffsetBinder) EventType() event.Type { return event.OffsetChange }

func (OffsetBinder) Apply(ev event.Event, target *LayerGroup) {
	target.SetOffset(ev.Offset)
}

// OpacityBinder synchronizes opacity, but only onto groups displaying the
// same data as the originating event.
type OpacityBinder struct{}

func (OpacityBinder) EventType() event.Type { return event.OpacityChange }

func (OpacityBinder) Apply(ev event.Event, target *LayerGroup) {
	if target.DataIndex() != ev.DataIndex {
		return
	}
	target.SetOpacity(ev.Alpha)
}

// BinderNames lists the fixed binder catalogue.
func BinderNames() []string {
	return []string{"windowlevel", "position", "zoom", "offset", "opacity"}
}

// BinderFromName resolves a catalogue name to a binder.
func BinderFromName(name string) (Binder, error) {
	switch name {
	case "windowlevel":
		return WindowLevelBinder{}, nil
	case "position":
		return PositionBinder{}, nil
	case "zoom":
		return ZoomBinder{}, nil
	case "offset":
		return OffsetBinder{}, nil
	case "opacity":
		return OpacityBinder{}, nil
	}
	return nil, errors.Errorf("unknown binder %q", name)
}
