package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDiffDims(t *testing.T) {
	tests := []struct {
		name string
		a, b Index
		want []int
	}{
		{"equal", NewIndex(1, 2, 3), NewIndex(1, 2, 3), nil},
		{"one diff", NewIndex(1, 2, 3), NewIndex(1, 2, 4), []int{2}},
		{"all diff", NewIndex(0, 0, 0), NewIndex(1, 1, 1), []int{0, 1, 2}},
		{"longer b", NewIndex(1, 2, 3), NewIndex(1, 2, 3, 0), []int{3}},
		{"longer a with diff", NewIndex(1, 9, 3, 1), NewIndex(1, 2, 3), []int{1, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DiffDims(tc.a, tc.b))
		})
	}
}

func TestDiffDims_EmptyIffEqual(t *testing.T) {
	a := NewIndex(4, 7, 2)
	b := NewIndex(4, 7, 2)
	assert.Empty(t, DiffDims(a, b))
	assert.True(t, a.Equal(b))

	b[1] = 8
	assert.NotEmpty(t, DiffDims(a, b))
	assert.False(t, a.Equal(b))
}

func TestIndex_Add(t *testing.T) {
	sum := NewIndex(1, 2, 3).Add(NewIndex(0, 0, 1))
	assert.Equal(t, NewIndex(1, 2, 4), sum)

	assert.Nil(t, NewIndex(1, 2, 3).Add(NewIndex(1, 2)), "length mismatch yields nil")
}

func TestUnitIndex(t *testing.T) {
	assert.Equal(t, NewIndex(0, 0, 1), UnitIndex(3, 2, 1))
	assert.Equal(t, NewIndex(0, -1, 0), UnitIndex(3, 1, -1))
	assert.Equal(t, NewIndex(0, 0, 0), UnitIndex(3, 5, 1), "out-of-range dim yields zero step")
}

func TestGeometry_WorldIndexRoundTrip(t *testing.T) {
	g := NewGeometry(NewPoint(-100, -80, 50), []float64{0.5, 0.5, 2}, []int{512, 512, 40})

	idx := NewIndex(10, 20, 5)
	p := g.IndexToWorld(idx)
	require.Equal(t, NewPoint(-95, -70, 60), p)
	assert.Equal(t, idx, g.WorldToIndex(p))

	// off-grid positions snap to the nearest index
	assert.Equal(t, idx, g.WorldToIndex(NewPoint(-95.2, -70.1, 60.4)))
}

func TestGeometry_IsIndexInBounds(t *testing.T) {
	g := NewGeometry(NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{4, 4, 3})

	// only the supplied dimensions are checked
	assert.True(t, g.IsIndexInBounds(NewIndex(99, 99, 2), []int{2}))
	assert.False(t, g.IsIndexInBounds(NewIndex(0, 0, 3), []int{2}))
	assert.False(t, g.IsIndexInBounds(NewIndex(0, 0, -1), []int{2}))
	assert.False(t, g.IsIndexInBounds(NewIndex(0, 0, 0), []int{3}), "dim beyond size is out of bounds")
}

func TestGeometry_AppendFrame(t *testing.T) {
	g := NewGeometry(NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{4, 4, 3})
	require.Equal(t, 3, g.Dims())

	g.AppendFrame()
	require.Equal(t, 4, g.Dims())
	assert.Equal(t, 2, g.Size()[3])

	g.AppendFrame()
	assert.Equal(t, 3, g.Size()[3])

	assert.True(t, g.IsIndexInBounds(NewIndex(0, 0, 0, 2), []int{2, 3}))
	assert.False(t, g.IsIndexInBounds(NewIndex(0, 0, 0, 3), []int{2, 3}))
}

func TestGeometry_Origins(t *testing.T) {
	g := NewGeometry(NewPoint(0, 0, 10), []float64{1, 1, 2.5}, []int{2, 2, 3})
	origins := g.Origins()
	require.Len(t, origins, 3)
	assert.Equal(t, NewPoint(0, 0, 10), origins[0])
	assert.Equal(t, NewPoint(0, 0, 12.5), origins[1])
	assert.Equal(t, NewPoint(0, 0, 15), origins[2])
}

func TestThirdColMajorDirection(t *testing.T) {
	axial := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	assert.Equal(t, 2, ThirdColMajorDirection(axial))

	coronal := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 0, -1,
		0, 1, 0,
	})
	assert.Equal(t, 1, ThirdColMajorDirection(coronal))

	sagittal := mat.NewDense(3, 3, []float64{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	})
	assert.Equal(t, 0, ThirdColMajorDirection(sagittal))
}
