// Package render turns the display state of a view into raster data: raw
// samples through the window LUT, colour map and alpha function. It sits at
// the boundary of the display core; viewports draw its output.
package render

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/jpfielding/dcmview.go/pkg/palette"
	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/volume"
)

// Generate rasterizes the slice at the view's current index into an RGBA
// image. The photometric interpretation selects the colour routine; a value
// outside the supported set fails with an unsupported-format error.
func Generate(v *view.View, img *volume.Image) (*image.RGBA, error) {
	wlut := v.CurrentWindowLUT()
	idx, _ := v.CurrentIndex()

	switch img.Meta().Photometric {
	case volume.Monochrome1:
		return generateMonochrome(v, img, wlut.Value, idx, true)
	case volume.Monochrome2:
		return generateMonochrome(v, img, wlut.Value, idx, false)
	case volume.RGB:
		return generateRGB(v, img, idx)
	case volume.PaletteColor:
		return generatePaletteColor(img, idx)
	case volume.YBRFull:
		return generateYBRFull(v, img, idx)
	}
	return nil, fmt.Errorf("unsupported photometric interpretation %q", img.Meta().Photometric)
}

func generateMonochrome(v *view.View, img *volume.Image, window func(int) uint8, at geom.Index, inverted bool) (*image.RGBA, error) {
	cmap, err := palette.Get(v.ColourMap())
	if err != nil {
		return nil, err
	}
	alpha := v.Alpha()

	size := img.Geometry().Size()
	out := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	idx := append(geom.Index(nil), at...)
	for y := 0; y < size[1]; y++ {
		for x := 0; x < size[0]; x++ {
			idx[0], idx[1] = x, y
			stored := img.Stored(img.Raw(idx))
			d := window(stored)
			if inverted {
				d = 255 - d
			}
			c := cmap[d]
			a := alpha(img.RescaledValueAt(idx), idx)
			o := out.PixOffset(x, y)
			out.Pix[o+0] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = a
		}
	}
	return out, nil
}

func generateRGB(v *view.View, img *volume.Image, at geom.Index) (*image.RGBA, error) {
	if img.Meta().SamplesPerPixel != 3 {
		return nil, fmt.Errorf("RGB data requires 3 samples per pixel, got %d", img.Meta().SamplesPerPixel)
	}
	alpha := v.Alpha()
	size := img.Geometry().Size()
	out := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	idx := append(geom.Index(nil), at...)
	for y := 0; y < size[1]; y++ {
		for x := 0; x < size[0]; x++ {
			idx[0], idx[1] = x, y
			o := out.PixOffset(x, y)
			out.Pix[o+0] = uint8(img.RawSample(idx, 0))
			out.Pix[o+1] = uint8(img.RawSample(idx, 1))
			out.Pix[o+2] = uint8(img.RawSample(idx, 2))
			out.Pix[o+3] = alpha(0, idx)
		}
	}
	return out, nil
}

func generatePaletteColor(img *volume.Image, at geom.Index) (*image.RGBA, error) {
	clut := img.PaletteLUT()
	if clut == nil {
		return nil, fmt.Errorf("palette color data without a palette LUT")
	}
	size := img.Geometry().Size()
	out := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	idx := append(geom.Index(nil), at...)
	for y := 0; y < size[1]; y++ {
		for x := 0; x < size[0]; x++ {
			idx[0], idx[1] = x, y
			r, g, b := clut.Lookup(img.Raw(idx))
			o := out.PixOffset(x, y)
			out.Pix[o+0] = r
			out.Pix[o+1] = g
			out.Pix[o+2] = b
			out.Pix[o+3] = 255
		}
	}
	return out, nil
}

func generateYBRFull(v *view.View, img *volume.Image, at geom.Index) (*image.RGBA, error) {
	if img.Meta().SamplesPerPixel != 3 {
		return nil, fmt.Errorf("YBR_FULL data requires 3 samples per pixel, got %d", img.Meta().SamplesPerPixel)
	}
	alpha := v.Alpha()
	size := img.Geometry().Size()
	out := image.NewRGBA(image.Rect(0, 0, size[0], size[1]))
	idx := append(geom.Index(nil), at...)
	for y := 0; y < size[1]; y++ {
		for x := 0; x < size[0]; x++ {
			idx[0], idx[1] = x, y
			yy := float64(img.RawSample(idx, 0))
			cb := float64(img.RawSample(idx, 1))
			cr := float64(img.RawSample(idx, 2))
			o := out.PixOffset(x, y)
			out.Pix[o+0] = clamp8(yy + 1.402*(cr-128))
			out.Pix[o+1] = clamp8(yy - 0.344136*(cb-128) - 0.714136*(cr-128))
			out.Pix[o+2] = clamp8(yy + 1.772*(cb-128))
			out.Pix[o+3] = alpha(0, idx)
		}
	}
	return out, nil
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// FitTo scales src into a w x h viewport preserving aspect ratio.
func FitTo(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	sx := float64(w) / float64(sb.Dx())
	sy := float64(h) / float64(sb.Dy())
	scale := sx
	if sy < sx {
		scale = sy
	}
	dw := int(float64(sb.Dx()) * scale)
	dh := int(float64(sb.Dy()) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Over, nil)
	return dst
}
