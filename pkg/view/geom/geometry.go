package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Geometry describes the spatial layout of an image volume: the world origin
// of the first slice, per-axis spacing in mm, and the voxel counts per axis.
// The size may carry a 4th (frame) dimension once frames are appended.
type Geometry struct {
	origin  Point
	spacing []float64
	size    []int
}

// NewGeometry creates a Geometry. origin, spacing and size must share the
// same dimensionality (3, or 4 for multi-frame data).
func NewGeometry(origin Point, spacing []float64, size []int) *Geometry {
	g := &Geometry{
		origin:  append(Point(nil), origin...),
		spacing: append([]float64(nil), spacing...),
		size:    append([]int(nil), size...),
	}
	return g
}

// Origin returns the world coordinates of the first voxel.
func (g *Geometry) Origin() Point { return g.origin }

// Spacing returns the per-axis voxel spacing.
func (g *Geometry) Spacing() []float64 { return g.spacing }

// Size returns the voxel counts per axis.
func (g *Geometry) Size() []int { return g.size }

// Dims returns the number of axes (3 or 4).
func (g *Geometry) Dims() int { return len(g.size) }

// AppendFrame extends the geometry along the 4th dimension. The first call
// promotes a 3D geometry to 4D with two frames (the original data plus the
// appended one); later calls bump the frame count.
func (g *Geometry) AppendFrame() {
	if len(g.size) == 3 {
		g.size = append(g.size, 2)
		g.spacing = append(g.spacing, 1)
		g.origin = append(g.origin, 0)
		return
	}
	g.size[3]++
}

// WorldToIndex converts a world point to the nearest image index. The result
// has the dimensionality of the input point.
func (g *Geometry) WorldToIndex(p Point) Index {
	idx := make(Index, len(p))
	for d := range p {
		if d >= len(g.origin) || d >= len(g.spacing) {
			break
		}
		idx[d] = int(math.Round((p[d] - g.origin[d]) / g.spacing[d]))
	}
	return idx
}

// IndexToWorld converts an image index to world coordinates.
func (g *Geometry) IndexToWorld(i Index) Point {
	p := make(Point, len(i))
	for d := range i {
		if d >= len(g.origin) || d >= len(g.spacing) {
			break
		}
		p[d] = g.origin[d] + float64(i[d])*g.spacing[d]
	}
	return p
}

// IsIndexInBounds reports whether idx is within the geometry size along the
// supplied dimensions only. A dimension outside either the index or the size
// counts as out of bounds.
func (g *Geometry) IsIndexInBounds(idx Index, dims []int) bool {
	for _, d := range dims {
		if d < 0 || d >= len(idx) || d >= len(g.size) {
			return false
		}
		if idx[d] < 0 || idx[d] >= g.size[d] {
			return false
		}
	}
	return true
}

// Origins returns the world origin of every slice along the slice axis.
func (g *Geometry) Origins() []Point {
	if len(g.size) < 3 {
		return nil
	}
	origins := make([]Point, g.size[2])
	for k := range origins {
		origins[k] = g.IndexToWorld(Index{0, 0, k})
	}
	return origins
}

// ThirdColMajorDirection returns the row with the largest absolute value in
// the third column of a 3x3 orientation matrix. This is the image axis a
// display orientation scrolls along.
func ThirdColMajorDirection(m *mat.Dense) int {
	dir := 0
	max := math.Abs(m.At(0, 2))
	for r := 1; r < 3; r++ {
		if v := math.Abs(m.At(r, 2)); v > max {
			max = v
			dir = r
		}
	}
	return dir
}
