package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/desain-gratis/imageadjust/types/entity"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// halves is a w x h image, red on the left half and blue on the right half.
func halves(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, red)
			} else {
				img.SetNRGBA(x, y, blue)
			}
		}
	}
	return img
}

func near(c color.Color, want color.NRGBA) bool {
	got := color.NRGBAModel.Convert(c).(color.NRGBA)
	diff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	return diff(got.R, want.R) <= 2 && diff(got.G, want.G) <= 2 && diff(got.B, want.B) <= 2 && diff(got.A, want.A) <= 2
}

func Test_RenderCrop_invalidRegion(t *testing.T) {
	src := halves(100, 80)
	tests := []struct {
		name   string
		region entity.SourceRect
	}{
		{"zero width", entity.SourceRect{Width: 0, Height: 10}},
		{"zero height", entity.SourceRect{Width: 10, Height: 0}},
		{"negative", entity.SourceRect{Width: -5, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderCrop(src, tt.region, entity.IdentityTransform(entity.AnchorOffset), 10, 10)
			if !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("RenderCrop() error = %v, want %v", err, ErrInvalidRegion)
			}
		})
	}
}

func Test_RenderCrop_frameMismatch(t *testing.T) {
	src := halves(100, 80)
	region := entity.SourceRect{Width: 10, Height: 10, Frame: entity.FrameSource}
	_, err := RenderCrop(src, region, entity.ViewTransform{Scale: 1, Rotation: 90}, 10, 10)
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("RenderCrop() error = %v, want %v", err, ErrInvalidRegion)
	}
}

func Test_RenderCrop_exactOutputSize(t *testing.T) {
	src := halves(1000, 800)
	sizes := []image.Point{{300, 300}, {600, 400}, {1, 1}, {17, 911}}
	for _, size := range sizes {
		region := entity.SourceRect{X: 12.5, Y: 40.25, Width: 333.3, Height: 211.7}
		got, err := RenderCrop(src, region, entity.IdentityTransform(entity.AnchorOffset), size.X, size.Y)
		if err != nil {
			t.Fatalf("RenderCrop() error = %v", err)
		}
		if got.Bounds() != image.Rect(0, 0, size.X, size.Y) {
			t.Errorf("RenderCrop() bounds = %v, want %v", got.Bounds(), size)
		}
	}
}

func Test_RenderCrop_direct(t *testing.T) {
	src := halves(1000, 800)
	region := entity.SourceRect{X: 200, Y: 200, Width: 600, Height: 400}
	got, err := RenderCrop(src, region, entity.IdentityTransform(entity.AnchorOffset), 600, 400)
	if err != nil {
		t.Fatalf("RenderCrop() error = %v", err)
	}
	if !near(got.At(100, 200), red) {
		t.Errorf("left = %v, want red", got.At(100, 200))
	}
	if !near(got.At(500, 200), blue) {
		t.Errorf("right = %v, want blue", got.At(500, 200))
	}
}

func Test_RenderCrop_outsideIsTransparent(t *testing.T) {
	src := halves(1000, 800)
	region, err := ComputeVisibleRegion(1000, 800, entity.ViewTransform{Scale: 0.5}, 600, 400)
	if err != nil {
		t.Fatalf("ComputeVisibleRegion() error = %v", err)
	}
	got, err := RenderCrop(src, region, entity.ViewTransform{Scale: 0.5}, 600, 400)
	if err != nil {
		t.Fatalf("RenderCrop() error = %v", err)
	}
	// 100 source pixels of margin on both sides, 50 output pixels
	if _, _, _, a := got.At(10, 200).RGBA(); a != 0 {
		t.Errorf("margin alpha = %v, want 0", a)
	}
	if _, _, _, a := got.At(590, 200).RGBA(); a != 0 {
		t.Errorf("margin alpha = %v, want 0", a)
	}
	if !near(got.At(150, 200), red) {
		t.Errorf("inside = %v, want red", got.At(150, 200))
	}
}

func Test_RenderCrop_rotateBeforeSampling(t *testing.T) {
	src := halves(1000, 800)
	transform := entity.ViewTransform{Scale: 2, Rotation: 90}

	inter, err := Intermediate(src, transform)
	if err != nil {
		t.Fatalf("Intermediate() error = %v", err)
	}
	if inter.Bounds() != image.Rect(0, 0, 800, 1000) {
		t.Errorf("Intermediate() bounds = %v, want 800x1000", inter.Bounds())
	}

	region, err := ComputeVisibleRegion(1000, 800, transform, 300, 300)
	if err != nil {
		t.Fatalf("ComputeVisibleRegion() error = %v", err)
	}
	got, err := RenderCrop(src, region, transform, 300, 300)
	if err != nil {
		t.Fatalf("RenderCrop() error = %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 300, 300) {
		t.Errorf("RenderCrop() bounds = %v", got.Bounds())
	}
	// the left half of the source turns to the top after a clockwise quarter turn
	if !near(got.At(150, 50), red) {
		t.Errorf("top = %v, want red", got.At(150, 50))
	}
	if !near(got.At(150, 250), blue) {
		t.Errorf("bottom = %v, want blue", got.At(150, 250))
	}
}

func Test_Intermediate_quarterTurn(t *testing.T) {
	src := halves(1000, 800)
	got, err := Intermediate(src, entity.ViewTransform{Scale: 1, Rotation: 90})
	if err != nil {
		t.Fatalf("Intermediate() error = %v", err)
	}
	if got.Bounds().Dx() != 800 || got.Bounds().Dy() != 1000 {
		t.Fatalf("Intermediate() bounds = %v", got.Bounds())
	}
	if !near(got.At(0, 0), red) || !near(got.At(799, 0), red) {
		t.Errorf("top row should be red")
	}
	if !near(got.At(0, 999), blue) || !near(got.At(799, 999), blue) {
		t.Errorf("bottom row should be blue")
	}
}

func Test_RenderCrop_doesNotMutateSource(t *testing.T) {
	src := halves(200, 100)
	before := append([]byte(nil), src.Pix...)

	region := entity.SourceRect{X: 10, Y: 10, Width: 50, Height: 50, Frame: entity.FrameRotated}
	if _, err := RenderCrop(src, region, entity.ViewTransform{Scale: 1.5, Rotation: 33}, 64, 64); err != nil {
		t.Fatalf("RenderCrop() error = %v", err)
	}
	if !bytes.Equal(before, src.Pix) {
		t.Errorf("source pixels changed")
	}
}

func Test_RenderFull(t *testing.T) {
	src := halves(40, 20).SubImage(image.Rect(10, 5, 30, 15))
	got := RenderFull(src)
	if got.Bounds() != image.Rect(0, 0, 20, 10) {
		t.Fatalf("RenderFull() bounds = %v", got.Bounds())
	}
	if !near(got.At(0, 0), red) || !near(got.At(19, 9), blue) {
		t.Errorf("RenderFull() copied the wrong pixels")
	}
}

func Test_CircleMask(t *testing.T) {
	src := halves(300, 300)
	got, err := CircleMask(src, 150)
	if err != nil {
		t.Fatalf("CircleMask() error = %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 150, 150) {
		t.Fatalf("CircleMask() bounds = %v", got.Bounds())
	}
	if _, _, _, a := got.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %v, want 0", a)
	}
	if _, _, _, a := got.At(75, 75).RGBA(); a != 0xffff {
		t.Errorf("center alpha = %v, want opaque", a)
	}

	if _, err := CircleMask(src, 0); !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("CircleMask(0) error = %v", err)
	}
}
