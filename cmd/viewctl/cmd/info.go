package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmview.go/pkg/config"
	"github.com/jpfielding/dcmview.go/pkg/dcm"
	"github.com/jpfielding/dcmview.go/pkg/view"
)

// NewInfoCmd creates the info cobra command
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Inspect DICOM display metadata",
		Long:  "Loads a DICOM file into the display core and prints geometry, calibration and window presets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			cfgPath, _ := cmd.Flags().GetString("config")
			return runInfo(filePath, cfgPath)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "DICOM file path to inspect")

	return cmd
}

func runInfo(filePath, cfgPath string) error {
	img, presets, err := dcm.Load(filePath)
	if err != nil {
		return fmt.Errorf("load error: %w", err)
	}

	meta := img.Meta()
	size := img.Geometry().Size()
	spacing := img.Geometry().Spacing()

	fmt.Println("=== Image ===")
	fmt.Printf("Modality: %s\n", meta.Modality)
	fmt.Printf("Photometric: %s\n", meta.Photometric)
	fmt.Printf("Size: %v\n", size)
	fmt.Printf("Spacing: %v\n", spacing)
	fmt.Printf("BitsStored: %d\n", meta.BitsStored)
	fmt.Printf("Signed: %v\n", meta.IsSigned)
	fmt.Printf("Slice RSI: %s\n", img.RescaleSlopeAndIntercept(0))

	min, max := img.RescaledDataRange()
	fmt.Printf("Rescaled range: [%g, %g]\n", min, max)

	v := view.New(img)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := v.AddWindowPresets(cfg.ViewPresets()); err != nil {
		return err
	}
	if err := v.AddWindowPresets(presets); err != nil {
		return err
	}

	fmt.Println("\n=== Window presets ===")
	for i, name := range v.WindowPresetNames() {
		p, _ := v.WindowPreset(name)
		tag := ""
		if p.PerSlice {
			tag = " (per-slice)"
		}
		fmt.Printf("%d: %s%s", i, name, tag)
		for _, l := range p.Levels {
			fmt.Printf(" wc=%g ww=%g", l.Center, l.Width)
		}
		fmt.Println()
	}
	return nil
}
