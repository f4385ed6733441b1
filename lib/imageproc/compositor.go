package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/desain-gratis/imageadjust/types/entity"
)

// RenderCrop samples region into a new outputWidth x outputHeight surface.
//
// When the transform rotates, the source is first drawn into the intermediate surface
// (see Intermediate) and region is read from there; otherwise region is read straight from
// src. Anything the region covers outside its frame stays transparent. src is never modified.
func RenderCrop(src image.Image, region entity.SourceRect, t entity.ViewTransform, outputWidth, outputHeight int) (*image.RGBA, error) {
	if region.Empty() {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidRegion, region.Width, region.Height)
	}
	if outputWidth <= 0 || outputHeight <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidOutput, outputWidth, outputHeight)
	}

	rotated := entity.NormalizeRotation(t.Rotation) != 0
	if rotated != (region.Frame == entity.FrameRotated) {
		return nil, fmt.Errorf("%w: region frame does not match rotation %v", ErrInvalidRegion, t.Rotation)
	}

	frame := src
	if rotated {
		var err error
		frame, err = Intermediate(src, t)
		if err != nil {
			return nil, err
		}
	}

	return sample(frame, region, outputWidth, outputHeight), nil
}

// Intermediate draws src rotated clockwise about its center and scaled about the same
// center onto a surface the size of the rotated bounding box. Rotation and scale are one
// composed transform.
func Intermediate(src image.Image, t entity.ViewTransform) (image.Image, error) {
	if !(t.Scale > 0) || math.IsInf(t.Scale, 0) {
		return nil, fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidTransform, t.Scale)
	}

	degrees := entity.NormalizeRotation(t.Rotation)
	if t.Scale == 1 {
		// imaging rotates counter-clockwise
		switch degrees {
		case 90:
			return imaging.Rotate270(src), nil
		case 180:
			return imaging.Rotate180(src), nil
		case 270:
			return imaging.Rotate90(src), nil
		}
	}

	b := src.Bounds()
	w, h := RotatedBounds(b.Dx(), b.Dy(), degrees)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	sin, cos := sincos(degrees)
	s := t.Scale
	cx := float64(b.Min.X) + float64(b.Dx())/2
	cy := float64(b.Min.Y) + float64(b.Dy())/2
	ox := float64(w) / 2
	oy := float64(h) / 2

	// translate(ox, oy) . scale(s) . rotate(degrees) . translate(-cx, -cy)
	s2d := f64.Aff3{
		s * cos, -s * sin, ox - s*(cos*cx-sin*cy),
		s * sin, s * cos, oy - s*(sin*cx+cos*cy),
	}
	draw.CatmullRom.Transform(dst, s2d, src, b, draw.Src, nil)

	return dst, nil
}

// sample maps region of frame onto a fresh width x height surface.
func sample(frame image.Image, region entity.SourceRect, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	b := frame.Bounds()
	sx := float64(width) / region.Width
	sy := float64(height) / region.Height
	x0 := float64(b.Min.X) + region.X
	y0 := float64(b.Min.Y) + region.Y

	s2d := f64.Aff3{
		sx, 0, -x0 * sx,
		0, sy, -y0 * sy,
	}
	draw.CatmullRom.Transform(dst, s2d, frame, b, draw.Src, nil)

	return dst
}

// RenderFull copies src as is into a new surface.
func RenderFull(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// CircleMask cuts a centered circle of the given diameter out of img; the corners are
// transparent.
func CircleMask(img image.Image, diameter int) (*image.RGBA, error) {
	if diameter <= 0 {
		return nil, fmt.Errorf("%w: diameter %v", ErrInvalidOutput, diameter)
	}
	b := img.Bounds()
	sp := image.Point{
		X: b.Min.X + (b.Dx()-diameter)/2,
		Y: b.Min.Y + (b.Dy()-diameter)/2,
	}

	dst := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
	draw.DrawMask(dst, dst.Bounds(), img, sp, &circle{r: float64(diameter) / 2}, image.Point{}, draw.Over)
	return dst, nil
}

// circle is an alpha mask, opaque inside the circle centered at (r, r)
type circle struct {
	r float64
}

func (c *circle) ColorModel() color.Model {
	return color.AlphaModel
}

func (c *circle) Bounds() image.Rectangle {
	d := int(math.Ceil(2 * c.r))
	return image.Rect(0, 0, d, d)
}

func (c *circle) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - c.r
	dy := float64(y) + 0.5 - c.r
	if dx*dx+dy*dy <= c.r*c.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{A: 0}
}
