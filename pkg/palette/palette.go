// Package palette provides the named colour maps a view can select: 256-entry
// tables from display intensity to RGB.
package palette

import (
	"fmt"
	"math"
)

// RGB is one colour map entry.
type RGB struct {
	R, G, B uint8
}

// Map is a 256-entry colour map indexed by display intensity.
type Map [256]RGB

// Get resolves a colour map by name. Unknown names fail.
func Get(name string) (*Map, error) {
	m, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown colour map %q", name)
	}
	return m, nil
}

// Names returns the available colour map names.
func Names() []string {
	return []string{"plain", "invplain", "rainbow", "hot", "test"}
}

var registry = map[string]*Map{
	"plain":    makeMap(func(i int) RGB { return grey(uint8(i)) }),
	"invplain": makeMap(func(i int) RGB { return grey(uint8(255 - i)) }),
	"rainbow":  makeMap(rainbow),
	"hot":      makeMap(hot),
	"test":     makeMap(test),
}

func makeMap(fn func(i int) RGB) *Map {
	var m Map
	for i := range m {
		m[i] = fn(i)
	}
	return &m
}

func grey(v uint8) RGB { return RGB{R: v, G: v, B: v} }

// rainbow sweeps hue from blue to red across the intensity range.
func rainbow(i int) RGB {
	t := float64(i) / 255
	angle := (4.0 / 6.0) * 2 * math.Pi * (1 - t)
	return RGB{
		R: cosChannel(angle, 0),
		G: cosChannel(angle, -2*math.Pi/3),
		B: cosChannel(angle, -4*math.Pi/3),
	}
}

func cosChannel(angle, phase float64) uint8 {
	v := 0.5 + 0.5*math.Cos(angle+phase)
	return uint8(math.Round(255 * v))
}

// hot ramps red, then green, then blue, each over a third of the range.
func hot(i int) RGB {
	third := 256.0 / 3
	f := float64(i)
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 255 {
			return 255
		}
		return uint8(v)
	}
	return RGB{
		R: clamp(f * 3),
		G: clamp((f - third) * 3),
		B: clamp((f - 2*third) * 3),
	}
}

// test alternates marked bands, useful to spot windowing bugs by eye.
func test(i int) RGB {
	if (i/32)%2 == 0 {
		return grey(uint8(i))
	}
	return RGB{R: uint8(i), G: 0, B: uint8(255 - i)}
}
