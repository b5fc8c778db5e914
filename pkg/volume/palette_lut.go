package volume

// PaletteColorLUT maps stored sample codes to RGB for PALETTE COLOR data.
type PaletteColorLUT struct {
	// FirstValue is the first input value mapped; lower codes clamp to it.
	FirstValue int
	R, G, B    []uint8
}

// Lookup returns the RGB entry for a stored sample code, clamping to the
// table ends.
func (l *PaletteColorLUT) Lookup(code uint16) (uint8, uint8, uint8) {
	i := int(code) - l.FirstValue
	if i < 0 {
		i = 0
	}
	if n := len(l.R); i >= n {
		i = n - 1
	}
	return l.R[i], l.G[i], l.B[i]
}

// SetPaletteLUT attaches the palette colour lookup table.
func (img *Image) SetPaletteLUT(l *PaletteColorLUT) { img.palette = l }

// PaletteLUT returns the palette colour lookup table, nil if absent.
func (img *Image) PaletteLUT() *PaletteColorLUT { return img.palette }
