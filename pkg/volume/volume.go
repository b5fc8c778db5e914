// Package volume provides the concrete pixel-data collaborator of the
// display core: an N-dimensional sample volume with calibration metadata,
// satisfying the view.Image contract.
package volume

import (
	"fmt"

	"github.com/jpfielding/dcmview.go/pkg/event"
	"github.com/jpfielding/dcmview.go/pkg/util"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
)

// Photometric tags how samples turn into colour.
type Photometric int

const (
	Monochrome2 Photometric = iota
	Monochrome1
	PaletteColor
	RGB
	YBRFull
)

// ParsePhotometric maps a DICOM photometric interpretation string to its
// tag. Unknown values fail with an unsupported-format error.
func ParsePhotometric(s string) (Photometric, error) {
	switch s {
	case "MONOCHROME1":
		return Monochrome1, nil
	case "MONOCHROME2", "":
		return Monochrome2, nil
	case "PALETTE COLOR":
		return PaletteColor, nil
	case "RGB":
		return RGB, nil
	case "YBR_FULL":
		return YBRFull, nil
	}
	return 0, fmt.Errorf("unsupported photometric interpretation %q", s)
}

func (p Photometric) String() string {
	switch p {
	case Monochrome1:
		return "MONOCHROME1"
	case Monochrome2:
		return "MONOCHROME2"
	case PaletteColor:
		return "PALETTE COLOR"
	case RGB:
		return "RGB"
	case YBRFull:
		return "YBR_FULL"
	}
	return fmt.Sprintf("Photometric(%d)", int(p))
}

// Meta carries the acquisition metadata the display core consumes.
type Meta struct {
	Modality        string
	BitsStored      int
	IsSigned        bool
	Photometric     Photometric
	SamplesPerPixel int
}

// Image is a volume of stored sample values plus the calibration state the
// View needs. Samples are kept as their unsigned bit patterns; signed data
// is reinterpreted on read.
type Image struct {
	geometry *geom.Geometry
	meta     Meta

	// row-major, slice-by-slice, frames appended after the first volume
	data []uint16

	rsis []lut.RSI // one per slice; missing entries fall back to slice 0
	uids []string  // one per slice

	events  *event.Emitter
	palette *PaletteColorLUT

	// lazily computed calibrated range
	rangeMin, rangeMax float64
	rangeKnown         bool
}

// New creates an Image over pre-filled sample data. The data length must
// match the geometry size (times samples per pixel). Per-slice UIDs are
// derived from the content when not supplied later via SetUIDs.
func New(g *geom.Geometry, meta Meta, data []uint16) (*Image, error) {
	if meta.BitsStored <= 0 || meta.BitsStored > 16 {
		return nil, fmt.Errorf("bits stored %d out of range (1..16)", meta.BitsStored)
	}
	if meta.SamplesPerPixel == 0 {
		meta.SamplesPerPixel = 1
	}
	size := g.Size()
	want := meta.SamplesPerPixel
	for _, s := range size {
		want *= s
	}
	if len(data) != want {
		return nil, fmt.Errorf("data length %d does not match geometry (%d samples)", len(data), want)
	}
	img := &Image{
		geometry: g,
		meta:     meta,
		data:     data,
		events:   event.NewEmitter(),
	}
	depth := size[2]
	img.rsis = make([]lut.RSI, depth)
	img.uids = make([]string, depth)
	for k := 0; k < depth; k++ {
		img.rsis[k] = lut.DefaultRSI
		img.uids[k] = util.ContentUID(k, size)
	}
	return img, nil
}

// Geometry returns the spatial layout.
func (img *Image) Geometry() *geom.Geometry { return img.geometry }

// Meta returns the acquisition metadata.
func (img *Image) Meta() Meta { return img.meta }

// Events exposes the image notifications (appendframe).
func (img *Image) Events() *event.Emitter { return img.events }

// BitsStored returns the stored bit depth.
func (img *Image) BitsStored() int { return img.meta.BitsStored }

// IsSigned reports whether stored samples are signed.
func (img *Image) IsSigned() bool { return img.meta.IsSigned }

// SetRescaleSlopeAndIntercept sets the calibration for one slice.
func (img *Image) SetRescaleSlopeAndIntercept(slice int, rsi lut.RSI) {
	if slice >= 0 && slice < len(img.rsis) {
		img.rsis[slice] = rsi
		img.rangeKnown = false
	}
}

// RescaleSlopeAndIntercept returns the calibration for a slice number,
// falling back to slice 0 for out-of-range slices.
func (img *Image) RescaleSlopeAndIntercept(slice int) lut.RSI {
	if slice < 0 || slice >= len(img.rsis) {
		return img.rsis[0]
	}
	return img.rsis[slice]
}

// SetUIDs replaces the per-slice identifiers.
func (img *Image) SetUIDs(uids []string) {
	img.uids = uids
}

// UID returns the identifier of the slice idx lies in.
func (img *Image) UID(idx geom.Index) string {
	k := idx.Get(2)
	if k < 0 || k >= len(img.uids) {
		k = 0
	}
	return img.uids[k]
}

// SecondaryOffset returns the frame/slice-derived offset used for per-slice
// preset selection: the slice number, advanced by whole volumes per frame.
func (img *Image) SecondaryOffset(idx geom.Index) int {
	off := idx.Get(2)
	if idx.Dims() > 3 {
		off += idx.Get(3) * img.geometry.Size()[2]
	}
	return off
}

// CanQuantify reports whether calibrated values carry physical meaning.
// Only monochrome data quantifies.
func (img *Image) CanQuantify() bool {
	switch img.meta.Photometric {
	case Monochrome1, Monochrome2:
		return img.meta.Modality != ""
	}
	return false
}

// Raw returns the stored sample code at idx (first sample for multi-sample
// pixels). Out-of-range indices return 0.
func (img *Image) Raw(idx geom.Index) uint16 {
	off, ok := img.offset(idx, 0)
	if !ok {
		return 0
	}
	return img.data[off]
}

// RawSample returns the stored sample code at idx for one sample plane.
func (img *Image) RawSample(idx geom.Index, sample int) uint16 {
	off, ok := img.offset(idx, sample)
	if !ok {
		return 0
	}
	return img.data[off]
}

func (img *Image) offset(idx geom.Index, sample int) (int, bool) {
	size := img.geometry.Size()
	x, y, z := idx.Get(0), idx.Get(1), idx.Get(2)
	if x < 0 || x >= size[0] || y < 0 || y >= size[1] || z < 0 || z >= size[2] {
		return 0, false
	}
	frame := 0
	if idx.Dims() > 3 && len(size) > 3 {
		frame = idx.Get(3)
		if frame < 0 || frame >= size[3] {
			return 0, false
		}
	}
	spp := img.meta.SamplesPerPixel
	perFrame := size[0] * size[1] * size[2]
	off := ((frame*perFrame+z*size[0]*size[1]+y*size[0]+x)*spp + sample)
	if off >= len(img.data) {
		return 0, false
	}
	return off, true
}

// Stored reinterprets a sample code as its numeric stored value.
func (img *Image) Stored(code uint16) int {
	if img.meta.IsSigned {
		return int(int16(code))
	}
	return int(code)
}

// RescaledValueAt returns the calibrated value at idx.
func (img *Image) RescaledValueAt(idx geom.Index) float64 {
	rsi := img.RescaleSlopeAndIntercept(idx.Get(2))
	return rsi.Apply(float64(img.Stored(img.Raw(idx))))
}

// RescaledDataRange scans the full calibrated intensity range once and
// caches it.
func (img *Image) RescaledDataRange() (float64, float64) {
	if img.rangeKnown {
		return img.rangeMin, img.rangeMax
	}
	size := img.geometry.Size()
	sliceLen := size[0] * size[1] * img.meta.SamplesPerPixel
	min, max := 0.0, 0.0
	first := true
	for i, code := range img.data {
		slice := (i / sliceLen) % size[2]
		v := img.rsis[slice].Apply(float64(img.Stored(code)))
		if first || v < min {
			min = v
		}
		if first || v > max {
			max = v
		}
		first = false
	}
	img.rangeMin, img.rangeMax = min, max
	img.rangeKnown = true
	return min, max
}

// AppendFrame adds one frame of samples along the 4th dimension, extends
// the geometry, and fires appendframe. The frame must hold one full volume.
func (img *Image) AppendFrame(frame []uint16) error {
	size := img.geometry.Size()
	want := size[0] * size[1] * size[2] * img.meta.SamplesPerPixel
	if len(frame) != want {
		return fmt.Errorf("frame length %d does not match volume (%d samples)", len(frame), want)
	}
	img.data = append(img.data, frame...)
	img.geometry.AppendFrame()
	img.rangeKnown = false
	frames := img.geometry.Size()[3]
	img.events.Fire(event.Event{Type: event.AppendFrame, Frame: frames - 1})
	return nil
}
