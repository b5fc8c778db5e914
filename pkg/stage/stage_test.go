package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
	"github.com/jpfielding/dcmview.go/pkg/volume"
)

func newGroup(t *testing.T, dataIndex int) *LayerGroup {
	t.Helper()
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 2}, []int{4, 4, 3})
	data := make([]uint16, 4*4*3)
	for i := range data {
		data[i] = uint16(i)
	}
	img, err := volume.New(g, volume.Meta{Modality: "CT", BitsStored: 16}, data)
	require.NoError(t, err)
	for k := 0; k < 3; k++ {
		img.SetRescaleSlopeAndIntercept(k, lut.RSI{Slope: 1, Intercept: -1024})
	}
	lg := NewLayerGroup(dataIndex)
	lg.SetView(view.New(img))
	return lg
}

// newBoundStage wires three layer groups with the given binders.
func newBoundStage(t *testing.T, binders ...Binder) (*Stage, *LayerGroup, *LayerGroup, *LayerGroup) {
	t.Helper()
	a, b, c := newGroup(t, 0), newGroup(t, 1), newGroup(t, 2)
	s := NewStage()
	s.AddLayerGroup(a)
	s.AddLayerGroup(b)
	s.AddLayerGroup(c)
	require.NoError(t, s.SetBinders(binders))
	s.Bind()
	return s, a, b, c
}

func countEvents(g *LayerGroup, t event.Type) *int {
	n := new(int)
	g.Events().On(t, func(event.Event) { *n++ })
	return n
}

func TestStage_WindowLevelPropagates(t *testing.T) {
	_, a, b, c := newBoundStage(t, WindowLevelBinder{})

	a.SetWindowLevel(40, 400)

	want := lut.NewWindowLevel(40, 400)
	for _, g := range []*LayerGroup{a, b, c} {
		wl, ok := g.View().CurrentWindowLevel()
		require.True(t, ok)
		assert.True(t, wl.Equal(want))
	}
}

// TestStage_NoEcho is the load-bearing property of the wiring: a change on
// one group reaches every peer exactly once and never bounces back to the
// originator, so N mutually bound viewports settle after one pass.
func TestStage_NoEcho(t *testing.T) {
	_, a, b, c := newBoundStage(t, WindowLevelBinder{})

	na := countEvents(a, event.WLChange)
	nb := countEvents(b, event.WLChange)
	nc := countEvents(c, event.WLChange)

	a.SetWindowLevel(40, 400)

	assert.Equal(t, 1, *na, "originator fires only its own change")
	assert.Equal(t, 1, *nb, "peers are applied exactly once")
	assert.Equal(t, 1, *nc)

	// a second identical mutation is absorbed by the views entirely
	a.SetWindowLevel(40, 400)
	assert.Equal(t, 1, *na)
	assert.Equal(t, 1, *nb)
	assert.Equal(t, 1, *nc)
}

func TestStage_SymmetricPropagation(t *testing.T) {
	_, a, b, c := newBoundStage(t, WindowLevelBinder{})

	na := countEvents(a, event.WLChange)
	nb := countEvents(b, event.WLChange)
	nc := countEvents(c, event.WLChange)

	// mutate a non-first group, then another: order of registration must
	// not privilege any group
	b.SetWindowLevel(40, 400)
	c.SetWindowLevel(400, 2000)

	want := lut.NewWindowLevel(400, 2000)
	for _, g := range []*LayerGroup{a, b, c} {
		wl, _ := g.View().CurrentWindowLevel()
		assert.True(t, wl.Equal(want))
	}
	assert.Equal(t, 2, *na)
	assert.Equal(t, 2, *nb)
	assert.Equal(t, 2, *nc)
}

func TestStage_PositionPropagates(t *testing.T) {
	_, a, b, c := newBoundStage(t, PositionBinder{})

	require.True(t, a.SetCurrentPosition(geom.NewPoint(1, 2, 4)))

	for _, g := range []*LayerGroup{a, b, c} {
		idx, ok := g.View().CurrentIndex()
		require.True(t, ok)
		assert.Equal(t, geom.NewIndex(1, 2, 2), idx)
	}
}

func TestStage_InvalidPositionNotPropagated(t *testing.T) {
	_, a, b, _ := newBoundStage(t, PositionBinder{})

	// z=20 is out of bounds: the originator reports the rejection but the
	// peers stay untouched
	assert.False(t, a.SetCurrentPosition(geom.NewPoint(0, 0, 20)))

	_, ok := b.View().CurrentIndex()
	assert.False(t, ok)
}

func TestStage_ZoomAndOffsetPropagate(t *testing.T) {
	_, a, b, c := newBoundStage(t, ZoomBinder{}, OffsetBinder{})

	a.SetZoom(2.5, geom.NewPoint(10, 10))
	a.SetOffset(geom.NewPoint(-5, 3))

	for _, g := range []*LayerGroup{a, b, c} {
		assert.Equal(t, 2.5, g.Scale())
		assert.True(t, g.Offset().Equal(geom.NewPoint(-5, 3), 1e-9))
	}
}

func TestStage_OpacityMatchesDataIndex(t *testing.T) {
	a, b, c := newGroup(t, 7), newGroup(t, 7), newGroup(t, 8)
	s := NewStage()
	s.AddLayerGroup(a)
	s.AddLayerGroup(b)
	s.AddLayerGroup(c)
	require.NoError(t, s.SetBinders([]Binder{OpacityBinder{}}))
	s.Bind()

	a.SetOpacity(0.25)

	assert.Equal(t, 0.25, b.Opacity(), "same data index follows")
	assert.Equal(t, 1.0, c.Opacity(), "other data index keeps its own opacity")
}

func TestStage_Unbind(t *testing.T) {
	s, a, b, _ := newBoundStage(t, WindowLevelBinder{})

	s.Unbind()
	a.SetWindowLevel(40, 400)

	_, ok := b.View().CurrentWindowLevel()
	assert.False(t, ok, "unbound peers see nothing")

	// rebinding reuses the memoized callbacks and restores propagation
	s.Bind()
	a.SetWindowLevel(50, 350)
	wl, ok := b.View().CurrentWindowLevel()
	require.True(t, ok)
	assert.True(t, wl.Equal(lut.NewWindowLevel(50, 350)))
}

func TestStage_SetBinders(t *testing.T) {
	s, a, b, _ := newBoundStage(t, WindowLevelBinder{}, PositionBinder{})

	assert.Error(t, s.SetBinders(nil))

	// narrowing the configuration while bound rewires in place
	require.NoError(t, s.SetBinders([]Binder{PositionBinder{}}))

	a.SetWindowLevel(40, 400)
	_, ok := b.View().CurrentWindowLevel()
	assert.False(t, ok, "window/level no longer synchronized")

	require.True(t, a.SetCurrentPosition(geom.NewPoint(0, 0, 2)))
	idx, ok := b.View().CurrentIndex()
	require.True(t, ok)
	assert.Equal(t, geom.NewIndex(0, 0, 1), idx)

	// an empty list is a valid "nothing synchronized" configuration
	require.NoError(t, s.SetBinders([]Binder{}))
	require.True(t, a.SetCurrentPosition(geom.NewPoint(0, 0, 0)))
	idx, _ = b.View().CurrentIndex()
	assert.Equal(t, geom.NewIndex(0, 0, 1), idx, "peer no longer follows")
}

func TestStage_AddLayerGroupWhileBound(t *testing.T) {
	a := newGroup(t, 0)
	s := NewStage()
	s.AddLayerGroup(a)
	require.NoError(t, s.SetBinders([]Binder{WindowLevelBinder{}}))
	s.Bind()

	// a single bound group has nothing to wire yet; the late arrival must
	// still join the mesh
	late := newGroup(t, 1)
	s.AddLayerGroup(late)

	a.SetWindowLevel(40, 400)
	wl, ok := late.View().CurrentWindowLevel()
	require.True(t, ok)
	assert.True(t, wl.Equal(lut.NewWindowLevel(40, 400)))

	// and symmetrically back
	late.SetWindowLevel(400, 2000)
	wl, _ = a.View().CurrentWindowLevel()
	assert.True(t, wl.Equal(lut.NewWindowLevel(400, 2000)))
}

func TestStage_GetLayerGroup(t *testing.T) {
	s, a, _, _ := newBoundStage(t, WindowLevelBinder{})
	assert.Same(t, a, s.GetLayerGroup(0))
	assert.Nil(t, s.GetLayerGroup(3))
	assert.Nil(t, s.GetLayerGroup(-1))
	assert.Equal(t, 3, s.NumLayerGroups())
}

func TestStage_Reset(t *testing.T) {
	s, a, b, _ := newBoundStage(t, WindowLevelBinder{})

	s.Reset()
	assert.Equal(t, 0, s.NumLayerGroups())
	assert.Empty(t, s.Binders())

	a.SetWindowLevel(40, 400)
	_, ok := b.View().CurrentWindowLevel()
	assert.False(t, ok)
}

func TestStage_SyncLayerGroupScale(t *testing.T) {
	s, a, b, c := newBoundStage(t, WindowLevelBinder{})

	// world extent is 4x4 mm in-plane; 100px and 40px viewports fit at
	// scale 25 and 10 respectively
	a.SetViewportSize(100, 100)
	b.SetViewportSize(40, 100)
	// c has no viewport size and must be left alone
	c.SetScale(3)

	s.SyncLayerGroupScale()

	assert.Equal(t, 10.0, a.Scale())
	assert.Equal(t, 10.0, b.Scale())
	assert.Equal(t, 3.0, c.Scale())
}

func TestStage_SyncLayerGroupScale_NoViewports(t *testing.T) {
	s, a, _, _ := newBoundStage(t, WindowLevelBinder{})
	s.SyncLayerGroupScale()
	assert.Equal(t, 1.0, a.Scale(), "no fit scale available, nothing changes")
}

func TestLayerGroup_FitScale(t *testing.T) {
	g := newGroup(t, 0)
	_, ok := g.FitScale()
	assert.False(t, ok, "no viewport size yet")

	g.SetViewportSize(8, 100)
	fs, ok := g.FitScale()
	require.True(t, ok)
	assert.Equal(t, 2.0, fs, "limited by the narrow axis")

	empty := NewLayerGroup(0)
	empty.SetViewportSize(100, 100)
	_, ok = empty.FitScale()
	assert.False(t, ok, "no view attached")
}

func TestLayerGroup_SetView_Rebubbles(t *testing.T) {
	g := newGroup(t, 0)
	old := g.View()
	n := countEvents(g, event.WLChange)

	g.SetView(newGroup(t, 0).View())
	old.SetWindowLevel(40, 400, "", false)
	assert.Equal(t, 0, *n, "detached view no longer bubbles")

	g.View().SetWindowLevel(40, 400, "", false)
	assert.Equal(t, 1, *n)
}

func TestLayerGroup_OpacityClamped(t *testing.T) {
	g := NewLayerGroup(0)
	g.SetOpacity(1.5)
	assert.Equal(t, 1.0, g.Opacity())
	g.SetOpacity(-0.5)
	assert.Equal(t, 0.0, g.Opacity())
}

func TestBinderFromName(t *testing.T) {
	for _, name := range BinderNames() {
		b, err := BinderFromName(name)
		require.NoError(t, err, name)
		require.NotNil(t, b, name)
	}
	_, err := BinderFromName("teleport")
	assert.Error(t, err)
}
