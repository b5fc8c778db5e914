package lut

// Window composes a Rescale with a WindowLevel to produce an 8-bit display
// lookup table. Replacing the level marks the table stale; Update fully
// regenerates it. Callers must Update after SetLevel before reading values
// for rendering.
type Window struct {
	rescale  *Rescale
	signed   bool
	level    WindowLevel
	hasLevel bool
	table    []uint8
	stale    bool
}

// NewWindow creates a Window over the given rescale calibration. For signed
// data, stored values are interpreted in [-N/2, N/2) where N is the rescale
// domain size.
func NewWindow(rescale *Rescale, signed bool) *Window {
	return &Window{rescale: rescale, signed: signed}
}

// Rescale returns the underlying calibration table.
func (w *Window) Rescale() *Rescale { return w.rescale }

// IsSigned reports whether stored values are interpreted as signed.
func (w *Window) IsSigned() bool { return w.signed }

// Level returns the stored window/level and whether one has been set.
func (w *Window) Level() (WindowLevel, bool) {
	return w.level, w.hasLevel
}

// SetLevel replaces the stored window/level and marks the table stale.
func (w *Window) SetLevel(level WindowLevel) {
	w.level = level
	w.hasLevel = true
	w.stale = true
}

// IsStale reports whether the table needs regeneration before use.
func (w *Window) IsStale() bool {
	return w.stale || w.table == nil
}

// Update regenerates the full display table from the current level. The
// table is always rebuilt whole, never patched incrementally.
func (w *Window) Update() {
	n := w.rescale.Length()
	if w.table == nil {
		w.table = make([]uint8, n)
	}
	offset := 0
	if w.signed {
		offset = n / 2
	}
	low := w.level.Center - w.level.Width/2
	for i := 0; i < n; i++ {
		calibrated := w.rescale.RSI().Apply(float64(i - offset))
		w.table[i] = displayValue(calibrated, low, w.level.Width)
	}
	w.stale = false
}

// Value returns the display intensity for a stored sample value. Stored
// values outside the domain clamp to its ends.
func (w *Window) Value(stored int) uint8 {
	offset := 0
	if w.signed {
		offset = w.rescale.Length() / 2
	}
	i := stored + offset
	if i < 0 {
		i = 0
	} else if i >= len(w.table) {
		i = len(w.table) - 1
	}
	return w.table[i]
}

// DisplayValue maps an already-calibrated value through the current window.
func (w *Window) DisplayValue(calibrated float64) uint8 {
	return displayValue(calibrated, w.level.Center-w.level.Width/2, w.level.Width)
}

func displayValue(calibrated, low, width float64) uint8 {
	v := (calibrated - low) / width * 255
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
