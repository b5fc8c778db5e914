package config

import (
	"github.com/jpfielding/dcmview.go/pkg/stage"
	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
)

// ViewPresets converts the configured presets into registry entries.
func (c *Config) ViewPresets() []view.Preset {
	out := make([]view.Preset, 0, len(c.Display.Presets))
	for _, p := range c.Display.Presets {
		levels := make([]lut.WindowLevel, 0, len(p.Levels))
		for _, l := range p.Levels {
			levels = append(levels, lut.NewWindowLevel(l.Center, l.Width))
		}
		out = append(out, view.Preset{Name: p.Name, Levels: levels, PerSlice: p.PerSlice})
	}
	return out
}

// StageBinders resolves the configured binder names against the catalogue.
func (c *Config) StageBinders() ([]stage.Binder, error) {
	binders := make([]stage.Binder, 0, len(c.Sync.Binders))
	for _, name := range c.Sync.Binders {
		b, err := stage.BinderFromName(name)
		if err != nil {
			return nil, err
		}
		binders = append(binders, b)
	}
	return binders, nil
}
