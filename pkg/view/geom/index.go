// Package geom provides the coordinate types of the display core: integer
// image-space indices, real-valued world-space points, and the geometry that
// converts between them.
package geom

// Index is an ordered tuple of integer offsets in image space:
// (column, row, slice[, frame]). It is a value type with no identity.
type Index []int

// NewIndex builds an Index from the given components.
func NewIndex(values ...int) Index {
	idx := make(Index, len(values))
	copy(idx, values)
	return idx
}

// ZeroIndex returns the all-zero Index with the given dimensionality.
func ZeroIndex(dims int) Index {
	return make(Index, dims)
}

// UnitIndex returns an Index of the given dimensionality with value at dim
// and zeros elsewhere. A dim outside [0, dims) yields an all-zero index.
func UnitIndex(dims, dim, value int) Index {
	idx := make(Index, dims)
	if dim >= 0 && dim < dims {
		idx[dim] = value
	}
	return idx
}

// Dims returns the dimensionality.
func (i Index) Dims() int { return len(i) }

// Get returns the component at dim, or 0 when dim is out of range.
func (i Index) Get(dim int) int {
	if dim < 0 || dim >= len(i) {
		return 0
	}
	return i[dim]
}

// Add returns the element-wise sum of two indices of equal length,
// or nil when the lengths differ.
func (i Index) Add(o Index) Index {
	if len(i) != len(o) {
		return nil
	}
	sum := make(Index, len(i))
	for d := range i {
		sum[d] = i[d] + o[d]
	}
	return sum
}

// Append returns a copy of the index extended with one more component.
func (i Index) Append(value int) Index {
	out := make(Index, len(i)+1)
	copy(out, i)
	out[len(i)] = value
	return out
}

// Equal reports element-wise equality. Indices of different lengths are
// never equal.
func (i Index) Equal(o Index) bool {
	if len(i) != len(o) {
		return false
	}
	for d := range i {
		if i[d] != o[d] {
			return false
		}
	}
	return true
}

// DiffDims returns the dimension positions where a and b differ. Indices of
// unequal length are compared up to the shorter one, and every dimension
// beyond it counts as differing. The result is empty iff a.Equal(b).
func DiffDims(a, b Index) []int {
	short := len(a)
	long := len(b)
	if long < short {
		short, long = long, short
	}
	var dims []int
	for d := 0; d < short; d++ {
		if a[d] != b[d] {
			dims = append(dims, d)
		}
	}
	for d := short; d < long; d++ {
		dims = append(dims, d)
	}
	return dims
}

// Point is an ordered tuple of real-valued coordinates in world space.
type Point []float64

// NewPoint builds a Point from the given coordinates.
func NewPoint(values ...float64) Point {
	p := make(Point, len(values))
	copy(p, values)
	return p
}

// Dims returns the dimensionality.
func (p Point) Dims() int { return len(p) }

// Get returns the coordinate at dim, or 0 when dim is out of range.
func (p Point) Get(dim int) float64 {
	if dim < 0 || dim >= len(p) {
		return 0
	}
	return p[dim]
}

// Equal reports element-wise equality within eps.
func (p Point) Equal(o Point, eps float64) bool {
	if len(p) != len(o) {
		return false
	}
	for d := range p {
		diff := p[d] - o[d]
		if diff < -eps || diff > eps {
			return false
		}
	}
	return true
}
