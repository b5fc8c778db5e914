package view

import (
	"fmt"
	"log/slog"

	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
)

// SetWindowLevel sets the current window/level. A width below 1 is a caller
// bug and is silently rejected: no mutation, no event. The preset name
// defaults to "manual". When the numeric center or width actually change,
// exactly one wlchange fires with SkipGenerate set to silent; a same-valued
// change (for instance a rename) commits without notifying.
func (v *View) SetWindowLevel(center, width float64, presetName string, silent bool) {
	if width < 1 {
		return
	}
	if presetName == "" {
		presetName = ManualPreset
	}
	next := lut.NewWindowLevel(center, width)
	numericChange := !v.hasLevel || !v.level.Equal(next)
	if !numericChange && presetName == v.presetName {
		return
	}
	v.level = next
	v.hasLevel = true
	v.presetName = presetName
	if numericChange {
		v.events.Fire(event.Event{
			Type:         event.WLChange,
			WC:           center,
			WW:           width,
			PresetName:   presetName,
			SkipGenerate: silent,
		})
	}
}

// CurrentWindowLevel returns the current window/level, false if none has
// been resolved yet.
func (v *View) CurrentWindowLevel() (lut.WindowLevel, bool) {
	return v.level, v.hasLevel
}

// SetWindowLevelPreset activates a preset by name.
func (v *View) SetWindowLevelPreset(name string, silent bool) error {
	wl, err := v.windowLevelForPreset(name)
	if err != nil {
		return err
	}
	v.SetWindowLevel(wl.Center, wl.Width, name, silent)
	return nil
}

// SetWindowLevelPresetByID activates a preset by registry position.
func (v *View) SetWindowLevelPresetByID(id int, silent bool) error {
	if id < 0 || id >= len(v.presets) {
		return fmt.Errorf("window preset id %d out of range [0,%d)", id, len(v.presets))
	}
	return v.SetWindowLevelPreset(v.presets[id].Name, silent)
}

// CurrentWindowLUT resolves the window LUT for the image calibration at the
// current index, lazily initializing index, presets and level as needed.
func (v *View) CurrentWindowLUT() *lut.Window {
	idx := v.ensureIndex()
	return v.currentWindowLUT(v.image.RescaleSlopeAndIntercept(idx.Get(2)))
}

// CurrentWindowLUTFor resolves the window LUT for an explicit calibration.
func (v *View) CurrentWindowLUTFor(rsi lut.RSI) *lut.Window {
	v.ensureIndex()
	return v.currentWindowLUT(rsi)
}

// currentWindowLUT is the window/level resolution algorithm. The LUT cache
// is keyed by the queried RSI, but a LUT built on a cache miss anchors its
// rescale at slice 0 regardless: only the window mapping, never the rescale
// mapping, is re-derived per call.
func (v *View) currentWindowLUT(rsi lut.RSI) *lut.Window {
	v.ensurePresets()

	wl := v.level
	if p, err := v.WindowPreset(v.presetName); err == nil && p.PerSlice {
		resolved, err := v.windowLevelForPreset(v.presetName)
		if err != nil {
			slog.Warn("Per-slice preset lookup failed, keeping current level",
				"preset", v.presetName, "error", err)
		} else {
			wl = resolved
		}
	} else if !v.hasLevel {
		if err := v.SetWindowLevelPreset(v.presets[0].Name, true); err != nil {
			slog.Warn("Default window preset failed", "preset", v.presets[0].Name, "error", err)
		}
		wl = v.level
	}

	key := rsi.String()
	w, ok := v.windowLUTs[key]
	if !ok {
		anchor := v.image.RescaleSlopeAndIntercept(0)
		w = lut.NewWindow(lut.NewRescale(anchor, v.image.BitsStored()), v.image.IsSigned())
		v.windowLUTs[key] = w
	}

	prev, had := w.Level()
	if !had || !prev.Equal(wl) {
		w.SetLevel(wl)
		w.Update()
		// Initial population is not a change; notify only when the numeric
		// values moved. SkipGenerate tells consumers the table has already
		// been regenerated by this call.
		if had {
			v.events.Fire(event.Event{
				Type:         event.WLChange,
				WC:           wl.Center,
				WW:           wl.Width,
				PresetName:   v.presetName,
				SkipGenerate: true,
			})
		}
	}
	return w
}

// WindowLUTCacheSize returns the number of cached window LUTs.
func (v *View) WindowLUTCacheSize() int { return len(v.windowLUTs) }
