// Package view implements the per-image display state: current index and
// position tracking, window/level resolution with a cached LUT pipeline,
// the window-preset registry, colour map and alpha function state. The View
// is the event source every synchronized viewport listens to.
package view

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
)

// Image is the collaborator contract the View consumes. Implementations own
// pixel storage and metadata; the View never touches raw buffers directly.
type Image interface {
	// Geometry returns the spatial layout of the volume.
	Geometry() *geom.Geometry
	// RescaleSlopeAndIntercept returns the calibration for a slice number.
	RescaleSlopeAndIntercept(slice int) lut.RSI
	// BitsStored returns the stored bit depth.
	BitsStored() int
	// IsSigned reports whether stored samples are signed.
	IsSigned() bool
	// SecondaryOffset returns the frame/slice-derived offset used to select
	// among per-slice preset values.
	SecondaryOffset(idx geom.Index) int
	// RescaledDataRange returns the full calibrated intensity range.
	RescaledDataRange() (min, max float64)
	// CanQuantify reports whether rescaled values are physically meaningful.
	CanQuantify() bool
	// RescaledValueAt returns the calibrated value at an index.
	RescaledValueAt(idx geom.Index) float64
	// UID returns the per-index image identifier.
	UID(idx geom.Index) string
	// Events exposes the image's notifications (appendframe).
	Events() *event.Emitter
}

// AlphaFunc maps a calibrated value and its index to a per-pixel alpha.
type AlphaFunc func(value float64, idx geom.Index) uint8

// OpaqueAlpha is the default alpha function.
func OpaqueAlpha(float64, geom.Index) uint8 { return 255 }

// DefaultScrollDim is the slice axis used when no orientation is set.
const DefaultScrollDim = 2

// View tracks what is being looked at inside one image volume and how its
// raw values map to display intensities.
type View struct {
	image  Image
	events *event.Emitter

	// window/level state
	windowLUTs map[string]*lut.Window
	presets    []*Preset
	presetPos  map[string]int
	presetName string
	level      lut.WindowLevel
	hasLevel   bool

	// position state machine: uninitialized until a position is committed
	position    geom.Point
	hasPosition bool

	orientation *mat.Dense
	colourMap   string
	alphaFn     AlphaFunc
}

// New creates a View over an image. The position starts uninitialized; read
// accessors lazily self-initialize so they are always safe to call.
func New(img Image) *View {
	v := &View{
		image:      img,
		events:     event.NewEmitter(),
		windowLUTs: map[string]*lut.Window{},
		presetPos:  map[string]int{},
		colourMap:  "plain",
		alphaFn:    OpaqueAlpha,
	}
	img.Events().On(event.AppendFrame, v.onAppendFrame)
	return v
}

// Image returns the image this view displays.
func (v *View) Image() Image { return v.image }

// Events returns the view's event emitter.
func (v *View) Events() *event.Emitter { return v.events }

// SetOrientation sets the 3x3 display orientation matrix.
func (v *View) SetOrientation(m *mat.Dense) { v.orientation = m }

// Orientation returns the display orientation matrix, nil if unset.
func (v *View) Orientation() *mat.Dense { return v.orientation }

// ScrollDimension returns the axis slice-scrolling advances along: the
// orientation's third column-major direction, or axis 2 by default.
func (v *View) ScrollDimension() int {
	if v.orientation == nil {
		return DefaultScrollDim
	}
	return geom.ThirdColMajorDirection(v.orientation)
}

// ColourMap returns the active colour map name.
func (v *View) ColourMap() string { return v.colourMap }

// SetColourMap activates a colour map by name and fires colourchange.
// Name resolution happens at render time.
func (v *View) SetColourMap(name string) {
	v.colourMap = name
	v.events.Fire(event.Event{Type: event.ColourChange, ColourMap: name})
}

// Alpha returns the per-pixel alpha function.
func (v *View) Alpha() AlphaFunc { return v.alphaFn }

// SetAlpha replaces the per-pixel alpha function and fires alphafuncchange.
func (v *View) SetAlpha(fn AlphaFunc) {
	if fn == nil {
		fn = OpaqueAlpha
	}
	v.alphaFn = fn
	v.events.Fire(event.Event{Type: event.AlphaFuncChange})
}

// CurrentPosition returns the committed world position, false if none yet.
func (v *View) CurrentPosition() (geom.Point, bool) {
	return v.position, v.hasPosition
}

// CurrentIndex returns the image index of the committed position, false if
// the view is still uninitialized.
func (v *View) CurrentIndex() (geom.Index, bool) {
	if !v.hasPosition {
		return nil, false
	}
	return v.image.Geometry().WorldToIndex(v.position), true
}

// ensureIndex initializes the position to the all-zero index on first use.
// Lazy self-initialization keeps read accessors safe before any scroll.
func (v *View) ensureIndex() geom.Index {
	if v.hasPosition {
		return v.image.Geometry().WorldToIndex(v.position)
	}
	zero := geom.ZeroIndex(v.image.Geometry().Dims())
	v.position = v.image.Geometry().IndexToWorld(zero)
	v.hasPosition = true
	return zero
}

// SetCurrentIndex moves the view to idx. Out-of-bounds indices along the
// scroll dimension (and dim 3 for 4D indices) are a normal "can't scroll
// further" outcome: the call returns false and fires nothing.
func (v *View) SetCurrentIndex(idx geom.Index, silent bool) bool {
	pos := v.image.Geometry().IndexToWorld(idx)
	return v.commitPosition(pos, idx, silent, false)
}

// SetCurrentPosition moves the view to the index nearest to pos. Unlike
// SetCurrentIndex, a rejected position fires positionchange with Valid=false
// unless silent.
func (v *View) SetCurrentPosition(pos geom.Point, silent bool) bool {
	idx := v.image.Geometry().WorldToIndex(pos)
	return v.commitPosition(pos, idx, silent, true)
}

func (v *View) commitPosition(pos geom.Point, idx geom.Index, silent, fromPosition bool) bool {
	dims := []int{v.ScrollDimension()}
	if idx.Dims() == 4 {
		dims = append(dims, 3)
	}
	if !v.image.Geometry().IsIndexInBounds(idx, dims) {
		if fromPosition && !silent {
			v.events.Fire(event.Event{Type: event.PositionChange, Valid: false})
		}
		return false
	}

	var diff []int
	if v.hasPosition {
		prev := v.image.Geometry().WorldToIndex(v.position)
		diff = geom.DiffDims(idx, prev)
	} else {
		diff = make([]int, idx.Dims())
		for d := range diff {
			diff[d] = d
		}
	}

	v.position = pos
	v.hasPosition = true

	if !silent {
		ev := event.Event{
			Type:     event.PositionChange,
			Valid:    true,
			Index:    idx,
			Position: pos,
			DiffDims: diff,
			ImageUID: v.image.UID(idx),
		}
		if v.image.CanQuantify() {
			ev.Value = v.image.RescaledValueAt(idx)
			ev.HasValue = true
		}
		v.events.Fire(ev)
	}
	return true
}

// IncrementIndex steps the current index by +1 along dim.
func (v *View) IncrementIndex(dim int, silent bool) bool {
	return v.stepIndex(dim, 1, silent)
}

// DecrementIndex steps the current index by -1 along dim.
func (v *View) DecrementIndex(dim int, silent bool) bool {
	return v.stepIndex(dim, -1, silent)
}

// IncrementScrollIndex steps one slice forward along the scroll dimension.
func (v *View) IncrementScrollIndex(silent bool) bool {
	return v.stepIndex(v.ScrollDimension(), 1, silent)
}

// DecrementScrollIndex steps one slice back along the scroll dimension.
func (v *View) DecrementScrollIndex(silent bool) bool {
	return v.stepIndex(v.ScrollDimension(), -1, silent)
}

func (v *View) stepIndex(dim, delta int, silent bool) bool {
	idx := v.ensureIndex()
	if dim >= idx.Dims() {
		slog.Warn("Cannot step index outside dimensions", "dim", dim, "dims", idx.Dims())
	}
	step := geom.UnitIndex(idx.Dims(), dim, delta)
	return v.SetCurrentIndex(idx.Add(step), silent)
}

// onAppendFrame extends the current index to a 4th dimension the first time
// the image gains a frame. The image geometry has already been extended.
func (v *View) onAppendFrame(event.Event) {
	if !v.hasPosition {
		return
	}
	idx := v.image.Geometry().WorldToIndex(v.position)
	if idx.Dims() >= 4 {
		return
	}
	v.position = v.image.Geometry().IndexToWorld(idx.Append(0))
}
