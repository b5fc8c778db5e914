package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/volume"
)

func monoImage(t *testing.T, photometric volume.Photometric) (*view.View, *volume.Image) {
	t.Helper()
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{2, 2, 1})
	data := []uint16{0, 85, 170, 255}
	img, err := volume.New(g, volume.Meta{Modality: "CT", BitsStored: 8, Photometric: photometric}, data)
	require.NoError(t, err)
	v := view.New(img)
	// identity window over the full 8-bit range
	v.SetWindowLevel(128, 256, "", false)
	return v, img
}

func TestGenerate_Monochrome2(t *testing.T) {
	v, img := monoImage(t, volume.Monochrome2)

	out, err := Generate(v, img)
	require.NoError(t, err)
	require.Equal(t, 2, out.Bounds().Dx())
	require.Equal(t, 2, out.Bounds().Dy())

	// darkest stored value maps black, brightest white, opaque alpha
	o := out.PixOffset(0, 0)
	assert.Equal(t, uint8(0), out.Pix[o])
	assert.Equal(t, uint8(255), out.Pix[o+3])

	o = out.PixOffset(1, 1)
	assert.Greater(t, out.Pix[o], uint8(250), "brightest stored value maps near white")
	assert.Equal(t, out.Pix[o], out.Pix[o+1], "plain map is grey")
	assert.Equal(t, out.Pix[o], out.Pix[o+2])
}

func TestGenerate_Monochrome1Inverts(t *testing.T) {
	v1, img1 := monoImage(t, volume.Monochrome1)
	v2, img2 := monoImage(t, volume.Monochrome2)

	a, err := Generate(v1, img1)
	require.NoError(t, err)
	b, err := Generate(v2, img2)
	require.NoError(t, err)

	o := a.PixOffset(0, 0)
	assert.Equal(t, uint8(255)-b.Pix[o], a.Pix[o])
}

func TestGenerate_UnknownColourMap(t *testing.T) {
	v, img := monoImage(t, volume.Monochrome2)
	v.SetColourMap("sepia")

	_, err := Generate(v, img)
	assert.Error(t, err)
}

func TestGenerate_AlphaFunction(t *testing.T) {
	v, img := monoImage(t, volume.Monochrome2)
	v.SetAlpha(func(value float64, _ geom.Index) uint8 {
		if value < 100 {
			return 0
		}
		return 255
	})

	out, err := Generate(v, img)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), out.Pix[out.PixOffset(0, 0)+3], "below threshold is transparent")
	assert.Equal(t, uint8(255), out.Pix[out.PixOffset(1, 1)+3])
}

func TestGenerate_RGB(t *testing.T) {
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{1, 1, 1})
	img, err := volume.New(g,
		volume.Meta{Modality: "XC", BitsStored: 8, Photometric: volume.RGB, SamplesPerPixel: 3},
		[]uint16{10, 20, 30})
	require.NoError(t, err)

	out, err := Generate(view.New(img), img)
	require.NoError(t, err)

	o := out.PixOffset(0, 0)
	assert.Equal(t, []uint8{10, 20, 30, 255}, out.Pix[o:o+4])
}

func TestGenerate_RGBRequiresThreeSamples(t *testing.T) {
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{1, 1, 1})
	img, err := volume.New(g,
		volume.Meta{Modality: "XC", BitsStored: 8, Photometric: volume.RGB},
		[]uint16{10})
	require.NoError(t, err)

	_, err = Generate(view.New(img), img)
	assert.Error(t, err)
}

func TestGenerate_PaletteColor(t *testing.T) {
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{1, 1, 1})
	img, err := volume.New(g,
		volume.Meta{Modality: "NM", BitsStored: 8, Photometric: volume.PaletteColor},
		[]uint16{2})
	require.NoError(t, err)

	// without a palette LUT the data is unrenderable
	_, err = Generate(view.New(img), img)
	require.Error(t, err)

	img.SetPaletteLUT(&volume.PaletteColorLUT{
		FirstValue: 0,
		R:          []uint8{0, 10, 20},
		G:          []uint8{1, 11, 21},
		B:          []uint8{2, 12, 22},
	})
	out, err := Generate(view.New(img), img)
	require.NoError(t, err)

	o := out.PixOffset(0, 0)
	assert.Equal(t, []uint8{20, 21, 22, 255}, out.Pix[o:o+4])
}

func TestGenerate_YBRFull(t *testing.T) {
	g := geom.NewGeometry(geom.NewPoint(0, 0, 0), []float64{1, 1, 1}, []int{1, 1, 1})
	// neutral chroma: Y=200, Cb=Cr=128 decodes to grey
	img, err := volume.New(g,
		volume.Meta{Modality: "US", BitsStored: 8, Photometric: volume.YBRFull, SamplesPerPixel: 3},
		[]uint16{200, 128, 128})
	require.NoError(t, err)

	out, err := Generate(view.New(img), img)
	require.NoError(t, err)

	o := out.PixOffset(0, 0)
	assert.Equal(t, []uint8{200, 200, 200, 255}, out.Pix[o:o+4])
}

func TestFitTo(t *testing.T) {
	v, img := monoImage(t, volume.Monochrome2)
	src, err := Generate(v, img)
	require.NoError(t, err)

	// 2x2 source into a 100x50 viewport: height limits the scale
	dst := FitTo(src, 100, 50)
	assert.Equal(t, 50, dst.Bounds().Dx())
	assert.Equal(t, 50, dst.Bounds().Dy())

	// degenerate viewports still produce at least one pixel
	dst = FitTo(src, 1, 1)
	assert.Equal(t, 1, dst.Bounds().Dx())
}
