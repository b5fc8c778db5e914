// Package dcm adapts DICOM files into the display core's image model. It is
// a boundary adapter: parsing is delegated entirely to suyashkumar/dicom and
// only display-relevant attributes are extracted.
package dcm

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
	"github.com/jpfielding/dcmview.go/pkg/view/lut"
	"github.com/jpfielding/dcmview.go/pkg/volume"
)

// Load reads a DICOM file into a volume image plus the window presets its
// VOI attributes declare. Multi-frame files load as a 3D stack.
func Load(path string) (*volume.Image, []view.Preset, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", path)
	}

	rows, ok := firstInt(&ds, tag.Rows)
	if !ok {
		return nil, nil, errors.New("missing Rows (0028,0010)")
	}
	cols, ok := firstInt(&ds, tag.Columns)
	if !ok {
		return nil, nil, errors.New("missing Columns (0028,0011)")
	}

	bitsStored, ok := firstInt(&ds, tag.BitsStored)
	if !ok {
		bitsStored = 16
	}
	pixelRep, _ := firstInt(&ds, tag.PixelRepresentation)
	samples, ok := firstInt(&ds, tag.SamplesPerPixel)
	if !ok {
		samples = 1
	}

	photometricStr, _ := firstString(&ds, tag.PhotometricInterpretation)
	photometric, err := volume.ParsePhotometric(photometricStr)
	if err != nil {
		return nil, nil, err
	}

	modality, _ := firstString(&ds, tag.Modality)

	data, depth, err := pixelData(&ds, rows, cols, samples)
	if err != nil {
		return nil, nil, err
	}

	origin := geom.NewPoint(0, 0, 0)
	if pos, ok := floats(&ds, tag.ImagePositionPatient); ok && len(pos) == 3 {
		origin = geom.NewPoint(pos[0], pos[1], pos[2])
	}
	spacing := []float64{1, 1, 1}
	if ps, ok := floats(&ds, tag.PixelSpacing); ok && len(ps) == 2 {
		// PixelSpacing is (row spacing, column spacing)
		spacing[0], spacing[1] = ps[1], ps[0]
	}
	if st, ok := firstFloat(&ds, tag.SliceThickness); ok && st > 0 {
		spacing[2] = st
	}

	g := geom.NewGeometry(origin, spacing, []int{cols, rows, depth})
	img, err := volume.New(g, volume.Meta{
		Modality:        modality,
		BitsStored:      bitsStored,
		IsSigned:        pixelRep == 1,
		Photometric:     photometric,
		SamplesPerPixel: samples,
	}, data)
	if err != nil {
		return nil, nil, err
	}

	rsi := lut.DefaultRSI
	if slope, ok := firstFloat(&ds, tag.RescaleSlope); ok {
		rsi.Slope = slope
	}
	if intercept, ok := firstFloat(&ds, tag.RescaleIntercept); ok {
		rsi.Intercept = intercept
	}
	for k := 0; k < depth; k++ {
		img.SetRescaleSlopeAndIntercept(k, rsi)
	}
	if uid, ok := firstString(&ds, tag.SOPInstanceUID); ok {
		uids := make([]string, depth)
		for k := range uids {
			uids[k] = uid + "." + strconv.Itoa(k)
		}
		img.SetUIDs(uids)
	}

	return img, windowPresets(&ds), nil
}

// windowPresets builds presets from WindowCenter/WindowWidth multi-values,
// named by their explanations when present.
func windowPresets(ds *dicom.Dataset) []view.Preset {
	centers, okC := floats(ds, tag.WindowCenter)
	widths, okW := floats(ds, tag.WindowWidth)
	if !okC || !okW || len(centers) == 0 || len(centers) != len(widths) {
		return nil
	}
	names, _ := strings(ds, tag.WindowCenterWidthExplanation)
	presets := make([]view.Preset, 0, len(centers))
	for i := range centers {
		name := "default"
		if i > 0 {
			name = "default" + strconv.Itoa(i)
		}
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		presets = append(presets, view.Preset{
			Name:   name,
			Levels: []lut.WindowLevel{lut.NewWindowLevel(centers[i], widths[i])},
		})
	}
	return presets
}

func pixelData(ds *dicom.Dataset, rows, cols, samples int) ([]uint16, int, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, 0, errors.Wrap(err, "missing PixelData")
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if len(info.Frames) == 0 {
		return nil, 0, errors.New("no pixel data frames")
	}
	depth := len(info.Frames)
	data := make([]uint16, 0, rows*cols*samples*depth)
	for i, fr := range info.Frames {
		if fr.Encapsulated {
			return nil, 0, errors.Errorf("frame %d is encapsulated; transcode before loading", i)
		}
		native := fr.NativeData
		if native.Rows() != rows || native.Cols() != cols {
			return nil, 0, errors.Errorf("frame %d is %dx%d, expected %dx%d",
				i, native.Rows(), native.Cols(), rows, cols)
		}
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				px, err := native.GetPixel(x, y)
				if err != nil {
					return nil, 0, errors.Wrapf(err, "frame %d pixel (%d,%d)", i, x, y)
				}
				for _, s := range px {
					data = append(data, uint16(s))
				}
			}
		}
	}
	if len(data) != rows*cols*samples*depth {
		return nil, 0, errors.Errorf("pixel data length %d does not match %dx%dx%d (%d samples)",
			len(data), cols, rows, depth, samples)
	}
	return data, depth, nil
}

func firstInt(ds *dicom.Dataset, t tag.Tag) (int, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, false
	}
	switch v := el.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0], true
		}
	case []string:
		if len(v) > 0 {
			if i, err := strconv.Atoi(v[0]); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

func firstFloat(ds *dicom.Dataset, t tag.Tag) (float64, bool) {
	vals, ok := floats(ds, t)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

func floats(ds *dicom.Dataset, t tag.Tag) ([]float64, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, false
	}
	switch v := el.Value.GetValue().(type) {
	case []float64:
		return v, true
	case []int:
		out := make([]float64, len(v))
		for i, n := range v {
			out[i] = float64(n)
		}
		return out, true
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func firstString(ds *dicom.Dataset, t tag.Tag) (string, bool) {
	vals, ok := strings(ds, t)
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func strings(ds *dicom.Dataset, t tag.Tag) ([]string, bool) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, false
	}
	if v, ok := el.Value.GetValue().([]string); ok {
		return v, true
	}
	return nil, false
}
