// Package event provides the synchronous event dispatch used by the
// display-state entities. Dispatch is single-threaded: firing an event is a
// direct nested call into every registered listener, in registration order.
package event

// Type identifies an event kind.
type Type string

const (
	// WLChange fires when the active window/level numerically changes.
	WLChange Type = "wlchange"
	// WLPresetAdd fires when a preset is registered under a new name.
	WLPresetAdd Type = "wlpresetadd"
	// ColourChange fires when the active colour map changes.
	ColourChange Type = "colourchange"
	// PositionChange fires when the current index/position is committed,
	// or with Valid=false when a position set was rejected out of bounds.
	PositionChange Type = "positionchange"
	// AlphaFuncChange fires when the per-pixel alpha function is replaced.
	AlphaFuncChange Type = "alphafuncchange"
	// OpacityChange fires when a layer group's opacity changes.
	OpacityChange Type = "opacitychange"
	// ZoomChange fires when a layer group's zoom scale changes.
	ZoomChange Type = "zoomchange"
	// OffsetChange fires when a layer group's pan offset changes.
	OffsetChange Type = "offsetchange"
	// AppendFrame fires when an image gains a frame along the 4th dimension.
	AppendFrame Type = "appendframe"
)

// Event carries the payload for all event types. Only the fields relevant to
// a given Type are populated; the rest stay at their zero values.
type Event struct {
	Type Type

	// positionchange
	Index    []int
	Position []float64
	DiffDims []int
	Valid    bool
	ImageUID string
	Value    float64
	HasValue bool

	// wlchange / wlpresetadd
	WC           float64
	WW           float64
	PresetName   string
	SkipGenerate bool

	// colourchange
	ColourMap string

	// opacitychange / zoomchange / offsetchange
	Alpha     float64
	DataIndex int
	Scale     float64
	Center    []float64
	Offset    []float64

	// appendframe
	Frame int
}

// ListenerID is a stable handle for a registered listener, usable for exact
// removal. IDs are unique per Emitter across all event types.
type ListenerID int

// Listener is a callback invoked synchronously on dispatch.
type Listener func(Event)

type entry struct {
	id ListenerID
	fn Listener
}

// Emitter dispatches events to listeners registered by type.
// It is not safe for concurrent use; the display core is single-threaded.
type Emitter struct {
	listeners map[Type][]entry
	nextID    ListenerID
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: map[Type][]entry{}}
}

// On registers fn for events of type t and returns its removal handle.
func (e *Emitter) On(t Type, fn Listener) ListenerID {
	e.nextID++
	e.listeners[t] = append(e.listeners[t], entry{id: e.nextID, fn: fn})
	return e.nextID
}

// Off removes the listener registered under id for type t. It reports
// whether a listener was actually removed.
func (e *Emitter) Off(t Type, id ListenerID) bool {
	entries := e.listeners[t]
	for i, en := range entries {
		if en.id == id {
			e.listeners[t] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Count returns the number of listeners registered for type t.
func (e *Emitter) Count(t Type) int {
	return len(e.listeners[t])
}

// Fire invokes every listener registered for ev.Type, in registration order.
// Listeners run inline; a listener that mutates state deepens the call stack
// rather than deferring. Listeners added or removed during dispatch take
// effect on the next Fire.
func (e *Emitter) Fire(ev Event) {
	entries := e.listeners[ev.Type]
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	for _, en := range snapshot {
		en.fn(ev)
	}
}
