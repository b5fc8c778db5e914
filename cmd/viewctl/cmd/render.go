package cmd

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmview.go/pkg/config"
	"github.com/jpfielding/dcmview.go/pkg/dcm"
	"github.com/jpfielding/dcmview.go/pkg/render"
	"github.com/jpfielding/dcmview.go/pkg/view"
	"github.com/jpfielding/dcmview.go/pkg/view/geom"
)

// NewRenderCmd creates the render cobra command
func NewRenderCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Window a DICOM slice to an image file",
		Long:  "Loads a DICOM file, applies a window preset and colour map at a slice, and writes the rasterized result as PNG or JPEG.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("output path is required")
			}
			preset, _ := cmd.Flags().GetString("preset")
			colour, _ := cmd.Flags().GetString("colour")
			slice, _ := cmd.Flags().GetInt("slice")
			fitW, _ := cmd.Flags().GetInt("fit-width")
			fitH, _ := cmd.Flags().GetInt("fit-height")
			cfgPath, _ := cmd.Flags().GetString("config")
			return runRender(filePath, out, preset, colour, cfgPath, slice, fitW, fitH)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path to render")
	pf.StringP("out", "o", "", "Output image path (.png or .jpg)")
	pf.String("preset", "", "Window preset name (defaults to the first preset)")
	pf.String("colour", "", "Colour map name (defaults to the config colour map)")
	pf.Int("slice", 0, "Slice number to render")
	pf.Int("fit-width", 0, "Scale the output to fit this width")
	pf.Int("fit-height", 0, "Scale the output to fit this height")

	return cmd
}

func runRender(filePath, out, preset, colour, cfgPath string, slice, fitW, fitH int) error {
	img, filePresets, err := dcm.Load(filePath)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	v := view.New(img)
	if err := v.AddWindowPresets(cfg.ViewPresets()); err != nil {
		return err
	}
	if err := v.AddWindowPresets(filePresets); err != nil {
		return err
	}

	if colour == "" {
		colour = cfg.Display.ColourMap
	}
	v.SetColourMap(colour)

	if !v.SetCurrentIndex(geom.NewIndex(0, 0, slice), true) {
		return fmt.Errorf("slice %d out of bounds", slice)
	}
	if preset != "" {
		if err := v.SetWindowLevelPreset(preset, true); err != nil {
			return err
		}
	}

	rendered, err := render.Generate(v, img)
	if err != nil {
		return err
	}
	if fitW > 0 && fitH > 0 {
		rendered = render.FitTo(rendered, fitW, fitH)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, rendered, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(f, rendered)
	}
}
