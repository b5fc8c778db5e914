package view

import (
	"fmt"
	"log/slog"

	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
)

// Preset names with reserved semantics.
const (
	// ManualPreset is the name recorded for direct window/level edits.
	ManualPreset = "manual"
	// MinMaxPreset is lazily resolved from the image's full intensity range.
	MinMaxPreset = "minmax"
)

// Preset is a named window/level preset. Per-slice presets carry one level
// per secondary offset and are append-only once installed.
type Preset struct {
	Name     string
	Levels   []lut.WindowLevel
	PerSlice bool
}

// AddWindowPresets merges presets into the registry. New names are appended
// in order and each fires one wlpresetadd. An existing non-per-slice name is
// replaced in place silently. Naming an existing per-slice preset fails and
// leaves the registry untouched.
func (v *View) AddWindowPresets(presets []Preset) error {
	for _, p := range presets {
		if pos, ok := v.presetPos[p.Name]; ok && v.presets[pos].PerSlice {
			return fmt.Errorf("cannot overwrite per-slice preset %q", p.Name)
		}
	}
	for _, p := range presets {
		p := p
		if pos, ok := v.presetPos[p.Name]; ok {
			v.presets[pos] = &p
			continue
		}
		v.presetPos[p.Name] = len(v.presets)
		v.presets = append(v.presets, &p)
		v.events.Fire(event.Event{Type: event.WLPresetAdd, PresetName: p.Name})
	}
	return nil
}

// WindowPresetNames returns the registry names in insertion order.
func (v *View) WindowPresetNames() []string {
	names := make([]string, len(v.presets))
	for i, p := range v.presets {
		names[i] = p.Name
	}
	return names
}

// WindowPreset returns the preset registered under name.
func (v *View) WindowPreset(name string) (*Preset, error) {
	pos, ok := v.presetPos[name]
	if !ok {
		return nil, fmt.Errorf("unknown window preset %q", name)
	}
	return v.presets[pos], nil
}

// CurrentPresetName returns the name of the active preset, or "manual".
func (v *View) CurrentPresetName() string { return v.presetName }

// ensurePresets guarantees the registry has at least the minmax preset so
// the lazy first-preset default in the window resolution always resolves.
func (v *View) ensurePresets() {
	if len(v.presets) != 0 {
		return
	}
	v.presetPos[MinMaxPreset] = 0
	v.presets = append(v.presets, &Preset{Name: MinMaxPreset})
	v.events.Fire(event.Event{Type: event.WLPresetAdd, PresetName: MinMaxPreset})
}

// windowLevelForPreset resolves the WindowLevel a preset selects right now.
// minmax resolves lazily from the image range and caches the result so later
// lookups are stable; per-slice presets index their levels by the image's
// secondary offset for the current index.
func (v *View) windowLevelForPreset(name string) (lut.WindowLevel, error) {
	pos, ok := v.presetPos[name]
	if !ok {
		return lut.WindowLevel{}, fmt.Errorf("unknown window preset %q", name)
	}
	p := v.presets[pos]

	if name == MinMaxPreset && len(p.Levels) == 0 {
		min, max := v.image.RescaledDataRange()
		width := max - min
		if width < 1 {
			slog.Warn("Flat intensity range, clamping window width to 1", "min", min, "max", max)
			width = 1
		}
		p.Levels = []lut.WindowLevel{lut.NewWindowLevel(min+width/2, width)}
	}

	if len(p.Levels) == 0 {
		return lut.WindowLevel{}, fmt.Errorf("window preset %q has no levels", name)
	}

	if p.PerSlice {
		off := v.image.SecondaryOffset(v.ensureIndex())
		if off < 0 || off >= len(p.Levels) {
			return lut.WindowLevel{}, fmt.Errorf("per-slice preset %q has no level at offset %d", name, off)
		}
		return p.Levels[off], nil
	}
	return p.Levels[0], nil
}
