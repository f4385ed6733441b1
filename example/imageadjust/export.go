package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/desain-gratis/imageadjust/types/entity"
	"github.com/desain-gratis/imageadjust/usecase/screen"
)

type exportFlags struct {
	screen    string
	in        string
	out       string
	scale     float64
	rotate    float64
	panX      float64
	panY      float64
	focalX    float64
	focalY    float64
	selection string
	format    string
	save      bool
}

func exportCmd() *cobra.Command {
	f := exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Apply adjustments to an image file and write the preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := f.events(cmd)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), f, events)
		},
	}

	cmd.Flags().StringVar(&f.screen, "screen", string(screen.VariantMediumZoom), "screen to use")
	cmd.Flags().StringVar(&f.in, "in", "", "input image")
	cmd.Flags().StringVar(&f.out, "out", "", "output file (default <in>-<screen>.<ext>)")
	cmd.Flags().Float64Var(&f.scale, "scale", 1, "zoom; the cropper takes its 0..1 slider value")
	cmd.Flags().Float64Var(&f.rotate, "rotate", 0, "rotation in degrees, clockwise")
	cmd.Flags().Float64Var(&f.panX, "pan-x", 0, "horizontal pan offset in pixels")
	cmd.Flags().Float64Var(&f.panY, "pan-y", 0, "vertical pan offset in pixels")
	cmd.Flags().Float64Var(&f.focalX, "focal-x", 0.5, "focal point x in [0,1]")
	cmd.Flags().Float64Var(&f.focalY, "focal-y", 0.5, "focal point y in [0,1]")
	cmd.Flags().StringVar(&f.selection, "selection", "", "selection x,y,w,h in pixels, or x%,y%,w%,h%")
	cmd.Flags().StringVar(&f.format, "format", "", "png, jpeg or webp (default the screen's own, or export.format)")
	cmd.Flags().BoolVar(&f.save, "save", false, "also run the save flow")
	cmd.MarkFlagRequired("in")
	return cmd
}

// events turns the flags that were set into screen events, in a fixed order.
func (f exportFlags) events(cmd *cobra.Command) ([]screen.Event, error) {
	var events []screen.Event
	changed := cmd.Flags().Changed
	if changed("scale") {
		events = append(events, screen.SetZoom{Value: f.scale})
	}
	if changed("rotate") {
		events = append(events, screen.SetRotation{Degrees: f.rotate})
	}
	if changed("pan-x") || changed("pan-y") {
		events = append(events, screen.Pan{X: f.panX, Y: f.panY})
	}
	if changed("focal-x") || changed("focal-y") {
		events = append(events, screen.SetFocal{X: f.focalX, Y: f.focalY})
	}
	if f.selection != "" {
		sel, err := parseSelection(f.selection)
		if err != nil {
			return nil, err
		}
		events = append(events, screen.SetSelection{Region: sel})
	}
	return events, nil
}

func runExport(ctx context.Context, f exportFlags, events []screen.Event) error {
	file, err := os.Open(f.in)
	if err != nil {
		return err
	}
	defer file.Close()

	if f.format != "" {
		cfg.Export.Format = f.format
	}
	c, err := newController()
	if err != nil {
		return err
	}
	session, err := c.Select(screen.Variant(f.screen))
	if err != nil {
		return err
	}

	begin, err := c.Dispatch(ctx, screen.BeginUpload{})
	if err != nil {
		return err
	}
	src, err := newUploader().Accept(filepath.Base(f.in), "", file)
	if err != nil {
		return err
	}
	if _, err := c.Dispatch(ctx, screen.Uploaded{Ticket: begin.Ticket, Source: src}); err != nil {
		return err
	}

	for _, e := range events {
		if _, err := c.Dispatch(ctx, e); err != nil {
			return fmt.Errorf("%w: %v", err, e.Kind())
		}
	}

	preview, err := c.Dispatch(ctx, screen.Preview{})
	if err != nil {
		return err
	}

	out := f.out
	if out == "" {
		ext := filepath.Ext(f.in)
		out = strings.TrimSuffix(f.in, ext) + "-" + f.screen + preview.Artifact.Format.Extension()
	}
	if err := os.WriteFile(out, preview.Artifact.Data, 0o644); err != nil {
		return err
	}
	log.Info().Msgf("Wrote %v (%vx%v %v)", out, preview.Artifact.Width, preview.Artifact.Height, preview.Artifact.Format)

	if f.save {
		if _, err := c.Dispatch(ctx, screen.ClosePreview{}); err != nil {
			return err
		}
		saved, err := c.Dispatch(ctx, screen.Save{})
		if err != nil {
			return err
		}
		log.Info().Msgf("Saved %v parts %v", session.Screen().Variant(), saved.Receipt.Parts)
	}
	return nil
}

// parseSelection reads "x,y,w,h"; a % on any value makes the whole selection percent.
func parseSelection(s string) (entity.SelectionRegion, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 4 {
		return entity.SelectionRegion{}, fmt.Errorf("selection %q: want x,y,w,h", s)
	}

	unit := entity.UnitPixel
	values := make([]float64, 4)
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if strings.HasSuffix(field, "%") {
			unit = entity.UnitPercent
			field = strings.TrimSuffix(field, "%")
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return entity.SelectionRegion{}, fmt.Errorf("%w: selection %q", err, s)
		}
		values[i] = v
	}

	return entity.SelectionRegion{Unit: unit, X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}
