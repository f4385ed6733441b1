package imageproc

import (
	"image"

	"golang.org/x/image/draw"
)

type ScaleDirection int32

const (
	ScaleHorizontal ScaleDirection = 0
	ScaleVertical   ScaleDirection = 1
)

// Scale resizes img so that the given axis measures target pixels, keeping the proportion.
func Scale(img image.Image, axis ScaleDirection, target int) image.Image {
	scale := float64(target) / float64(img.Bounds().Dx())
	newWidth := target
	newHeight := int(float64(img.Bounds().Dy()) * scale)

	if axis == ScaleVertical {
		scale = float64(target) / float64(img.Bounds().Dy())
		newWidth = int(float64(img.Bounds().Dx()) * scale)
		newHeight = target
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)
	return scaled
}
