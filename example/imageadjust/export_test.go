package main

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
	"github.com/desain-gratis/imageadjust/usecase/screen"
	"github.com/desain-gratis/imageadjust/utility/config"
)

func Test_parseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    entity.SelectionRegion
		wantErr bool
	}{
		{"10,20,300,200", entity.SelectionRegion{Unit: entity.UnitPixel, X: 10, Y: 20, Width: 300, Height: 200}, false},
		{"5%, 5%, 90%, 50%", entity.SelectionRegion{Unit: entity.UnitPercent, X: 5, Y: 5, Width: 90, Height: 50}, false},
		{"1,2,3", entity.SelectionRegion{}, true},
		{"a,b,c,d", entity.SelectionRegion{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSelection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSelection() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return path
}

func Test_runExport(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	tests := []struct {
		name    string
		flags   exportFlags
		events  []screen.Event
		wantExt string
		wantErr error
	}{
		{
			name:    "screen format",
			flags:   exportFlags{screen: string(screen.VariantMediumZoom)},
			wantExt: ".jpg",
		},
		{
			name:    "format flag",
			flags:   exportFlags{screen: string(screen.VariantMediumZoom), format: "png"},
			wantExt: ".png",
		},
		{
			name:    "unsupported format",
			flags:   exportFlags{screen: string(screen.VariantAvatar), format: "bmp"},
			wantErr: imageproc.ErrUnsupportedFormat,
		},
		{
			name:    "infinite rotation",
			flags:   exportFlags{screen: string(screen.VariantMediumZoom)},
			events:  []screen.Event{screen.SetRotation{Degrees: math.Inf(1)}},
			wantErr: imageproc.ErrInvalidTransform,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			cfg, err = config.Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			f := tt.flags
			f.in = writePNG(t, 320, 240)
			err = runExport(context.Background(), f, tt.events)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("runExport() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("runExport() error = %v", err)
			}
			out := strings.TrimSuffix(f.in, ".png") + "-" + f.screen + tt.wantExt
			if _, err := os.Stat(out); err != nil {
				t.Errorf("output %v: %v", filepath.Base(out), err)
			}
		})
	}
}
