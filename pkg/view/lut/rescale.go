package lut

// Rescale maps stored raw sample values to calibrated values using a
// slope/intercept pair over the domain implied by the stored bit depth.
// The table is built on first access and never changes afterwards.
type Rescale struct {
	rsi        RSI
	bitsStored int
	table      []float64
}

// NewRescale creates a Rescale for the given calibration and bit depth.
func NewRescale(rsi RSI, bitsStored int) *Rescale {
	return &Rescale{rsi: rsi, bitsStored: bitsStored}
}

// RSI returns the calibration pair.
func (r *Rescale) RSI() RSI { return r.rsi }

// BitsStored returns the stored bit depth.
func (r *Rescale) BitsStored() int { return r.bitsStored }

// Length returns the domain size, 1<<bitsStored.
func (r *Rescale) Length() int { return 1 << uint(r.bitsStored) }

// Value returns the calibrated value for a raw sample code in [0, Length).
// Codes outside the domain are computed directly without the table.
func (r *Rescale) Value(code int) float64 {
	if code < 0 || code >= r.Length() {
		return r.rsi.Apply(float64(code))
	}
	if r.table == nil {
		r.fill()
	}
	return r.table[code]
}

func (r *Rescale) fill() {
	r.table = make([]float64, r.Length())
	for i := range r.table {
		r.table[i] = r.rsi.Apply(float64(i))
	}
}
