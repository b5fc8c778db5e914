// Package lut implements the intensity pipeline of the display core: rescale
// calibration (slope/intercept), window/level values, and the composed
// lookup table from stored sample values to 8-bit display intensities.
package lut

import "strconv"

// WindowLevel is an immutable (center, width) pair describing a linear
// intensity window. Width validity (>= 1) is enforced by callers at the
// mutation boundary, not by the type.
type WindowLevel struct {
	Center float64
	Width  float64
}

// NewWindowLevel creates a WindowLevel.
func NewWindowLevel(center, width float64) WindowLevel {
	return WindowLevel{Center: center, Width: width}
}

// Equal reports value equality on (center, width).
func (w WindowLevel) Equal(o WindowLevel) bool {
	return w.Center == o.Center && w.Width == o.Width
}

// RSI is a rescale slope/intercept pair converting stored raw sample values
// to calibrated values.
type RSI struct {
	Slope     float64
	Intercept float64
}

// DefaultRSI is the identity calibration.
var DefaultRSI = RSI{Slope: 1, Intercept: 0}

// Apply returns raw*slope + intercept.
func (r RSI) Apply(raw float64) float64 {
	return raw*r.Slope + r.Intercept
}

// Equal reports value equality.
func (r RSI) Equal(o RSI) bool {
	return r.Slope == o.Slope && r.Intercept == o.Intercept
}

// String returns a stable key for caching, e.g. "1:-1024".
func (r RSI) String() string {
	return strconv.FormatFloat(r.Slope, 'g', -1, 64) + ":" +
		strconv.FormatFloat(r.Intercept, 'g', -1, 64)
}
