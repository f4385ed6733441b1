//go:build cgo

package webp_test

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	xwebp "golang.org/x/image/webp"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	_ "github.com/desain-gratis/imageadjust/lib/imageproc/webp"
	"github.com/desain-gratis/imageadjust/types/entity"
)

func Test_Export_webp(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 5), A: 255})
		}
	}

	opts := imageproc.ExportOptions{Format: entity.FormatWebP}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	got, err := imageproc.Export(img, entity.FormatPNG, opts)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got.Format != entity.FormatWebP || !strings.HasPrefix(got.DataURI, "data:image/webp;base64,") {
		t.Errorf("Export() format = %v", got.Format)
	}
	if !strings.HasPrefix(got.Placeholder, "data:image/webp;base64,") {
		t.Errorf("Export() placeholder = %.40v", got.Placeholder)
	}

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatalf("webp.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("decoded = %vx%v, want 64x48", cfg.Width, cfg.Height)
	}
}
