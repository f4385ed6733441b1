package imageproc

import (
	"fmt"
	"image"
	"math"

	"github.com/desain-gratis/imageadjust/types/entity"
)

// DefaultSelectionArea is the share of the limiting dimension a default selection takes.
const DefaultSelectionArea = 0.9

// ComputeVisibleRegion returns the rectangle that, once sampled into an
// outputWidth x outputHeight surface, shows what the user sees through the view transform.
//
// Without rotation the rectangle is in source pixels. With rotation the rectangle
// addresses the intermediate surface produced by Intermediate (the rotated bounding box,
// scale already applied), so the compositor can sample it axis aligned.
//
// Offset anchored regions are never clamped: whatever falls outside the frame is
// rendered transparent. Focal anchored regions are kept inside the image whenever they fit.
func ComputeVisibleRegion(naturalWidth, naturalHeight int, t entity.ViewTransform, outputWidth, outputHeight int) (entity.SourceRect, error) {
	if !(t.Scale > 0) || math.IsInf(t.Scale, 0) {
		return entity.SourceRect{}, fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidTransform, t.Scale)
	}
	if outputWidth <= 0 || outputHeight <= 0 {
		return entity.SourceRect{}, fmt.Errorf("%w: %vx%v", ErrInvalidOutput, outputWidth, outputHeight)
	}
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return entity.SourceRect{}, fmt.Errorf("%w: empty source %vx%v", ErrInvalidRegion, naturalWidth, naturalHeight)
	}

	frame := entity.FrameSource
	frameW, frameH := float64(naturalWidth), float64(naturalHeight)
	scale := t.Scale
	if entity.NormalizeRotation(t.Rotation) != 0 {
		w, h := RotatedBounds(naturalWidth, naturalHeight, t.Rotation)
		frame = entity.FrameRotated
		frameW, frameH = float64(w), float64(h)
		scale = 1
	}

	outW, outH := float64(outputWidth), float64(outputHeight)

	if t.Anchor == entity.AnchorFocal {
		return focalRegion(frameW, frameH, frame, t, scale, outW, outH), nil
	}

	visibleWidth := outW / scale
	visibleHeight := outH / scale
	return entity.SourceRect{
		X:      -t.Position.X/scale + (frameW-visibleWidth)/2,
		Y:      -t.Position.Y/scale + (frameH-visibleHeight)/2,
		Width:  visibleWidth,
		Height: visibleHeight,
		Frame:  frame,
	}, nil
}

// focalRegion fits the image to cover the output, then centers the visible window on
// the focal point.
func focalRegion(frameW, frameH float64, frame entity.Frame, t entity.ViewTransform, scale, outW, outH float64) entity.SourceRect {
	base := math.Max(outW/frameW, outH/frameH)
	visibleWidth := outW / (base * scale)
	visibleHeight := outH / (base * scale)

	// content extent inside the frame; the rotated surface holds the image scaled about its center
	k := 1.0
	if frame == entity.FrameRotated {
		k = t.Scale
	}
	centerX := frameW/2 + k*(t.Position.X*frameW-frameW/2)
	centerY := frameH/2 + k*(t.Position.Y*frameH-frameH/2)

	loX, hiX := math.Max(0, frameW/2-k*frameW/2), math.Min(frameW, frameW/2+k*frameW/2)
	loY, hiY := math.Max(0, frameH/2-k*frameH/2), math.Min(frameH, frameH/2+k*frameH/2)

	return entity.SourceRect{
		X:      clampSpan(centerX-visibleWidth/2, visibleWidth, loX, hiX),
		Y:      clampSpan(centerY-visibleHeight/2, visibleHeight, loY, hiY),
		Width:  visibleWidth,
		Height: visibleHeight,
		Frame:  frame,
	}
}

// clampSpan keeps [start, start+size] within [lo, hi]; a span larger than the range is centered.
func clampSpan(start, size, lo, hi float64) float64 {
	if size > hi-lo {
		return (lo+hi)/2 - size/2
	}
	if start < lo {
		return lo
	}
	if start+size > hi {
		return hi - size
	}
	return start
}

// SelectionToRegion maps a selection drawn over the displayed (scaled, rotated) image to
// the rectangle the compositor samples. Percent selections are relative to the frame.
func SelectionToRegion(sel entity.SelectionRegion, naturalWidth, naturalHeight int, t entity.ViewTransform) (entity.SourceRect, error) {
	if !(t.Scale > 0) || math.IsInf(t.Scale, 0) {
		return entity.SourceRect{}, fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidTransform, t.Scale)
	}

	if entity.NormalizeRotation(t.Rotation) != 0 {
		w, h := RotatedBounds(naturalWidth, naturalHeight, t.Rotation)
		px := ToPixel(sel, w, h)
		if px.Empty() {
			return entity.SourceRect{}, fmt.Errorf("%w: %vx%v", ErrInvalidRegion, px.Width, px.Height)
		}
		return entity.SourceRect{X: px.X, Y: px.Y, Width: px.Width, Height: px.Height, Frame: entity.FrameRotated}, nil
	}

	px := ToPixel(sel, naturalWidth, naturalHeight)
	if px.Empty() {
		return entity.SourceRect{}, fmt.Errorf("%w: %vx%v", ErrInvalidRegion, px.Width, px.Height)
	}

	// undo the display zoom about the image center
	cx, cy := float64(naturalWidth)/2, float64(naturalHeight)/2
	return entity.SourceRect{
		X:      cx + (px.X-cx)/t.Scale,
		Y:      cy + (px.Y-cy)/t.Scale,
		Width:  px.Width / t.Scale,
		Height: px.Height / t.Scale,
		Frame:  entity.FrameSource,
	}, nil
}

// DefaultSelection is a centered selection taking 90% of the limiting dimension at the
// given aspect ratio (width / height). An aspect of 0 keeps the image's own proportion.
func DefaultSelection(width, height int, aspect float64) entity.SelectionRegion {
	w, h := float64(width), float64(height)

	selWidth := w * DefaultSelectionArea
	selHeight := h * DefaultSelectionArea
	if aspect > 0 {
		selHeight = selWidth / aspect
		if selHeight > h*DefaultSelectionArea {
			selHeight = h * DefaultSelectionArea
			selWidth = selHeight * aspect
		}
	}

	return entity.SelectionRegion{
		Unit:   entity.UnitPixel,
		X:      (w - selWidth) / 2,
		Y:      (h - selHeight) / 2,
		Width:  selWidth,
		Height: selHeight,
		Aspect: aspect,
	}
}

// ToPixel converts a selection into pixel units of a width x height frame.
func ToPixel(sel entity.SelectionRegion, width, height int) entity.SelectionRegion {
	if sel.Unit != entity.UnitPercent {
		sel.Unit = entity.UnitPixel
		return sel
	}
	w, h := float64(width), float64(height)
	return entity.SelectionRegion{
		Unit:   entity.UnitPixel,
		X:      sel.X * w / 100,
		Y:      sel.Y * h / 100,
		Width:  sel.Width * w / 100,
		Height: sel.Height * h / 100,
		Aspect: sel.Aspect,
	}
}

// ToPercent converts a selection into percent of a width x height frame.
func ToPercent(sel entity.SelectionRegion, width, height int) entity.SelectionRegion {
	if sel.Unit == entity.UnitPercent {
		return sel
	}
	w, h := float64(width), float64(height)
	return entity.SelectionRegion{
		Unit:   entity.UnitPercent,
		X:      sel.X * 100 / w,
		Y:      sel.Y * 100 / h,
		Width:  sel.Width * 100 / w,
		Height: sel.Height * 100 / h,
		Aspect: sel.Aspect,
	}
}

// RotatedBounds is the size of the bounding box of a width x height image rotated by degrees.
func RotatedBounds(width, height int, degrees float64) (int, int) {
	sin, cos := sincos(degrees)
	w := math.Abs(cos)*float64(width) + math.Abs(sin)*float64(height)
	h := math.Abs(sin)*float64(width) + math.Abs(cos)*float64(height)
	return int(math.Round(w)), int(math.Round(h))
}

// sincos is exact on right angles so quarter turns swap dimensions without drift.
func sincos(degrees float64) (sin, cos float64) {
	switch d := entity.NormalizeRotation(degrees); d {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	default:
		return math.Sincos(d * math.Pi / 180)
	}
}

// AutoCropRegion is the largest ratioX:ratioY region centered on the image, shrunk about
// its center to area (0..1] of its size.
func AutoCropRegion(width, height int, ratioX, ratioY int, area float64) entity.SelectionRegion {
	bounds := image.Rect(0, 0, width, height)
	if ratioX <= 0 {
		ratioX = width
	}
	if ratioY <= 0 {
		ratioY = height
	}
	if area <= 0 || area > 1 {
		area = 1
	}

	maxRegion := MaxAspectRegion(bounds, width/2, height/2, ratioX, ratioY)
	w := float64(maxRegion.Dx()) * area
	h := float64(maxRegion.Dy()) * area
	cx := float64(maxRegion.Min.X) + float64(maxRegion.Dx())/2
	cy := float64(maxRegion.Min.Y) + float64(maxRegion.Dy())/2

	return entity.SelectionRegion{
		Unit:   entity.UnitPixel,
		X:      cx - w/2,
		Y:      cy - h/2,
		Width:  w,
		Height: h,
		Aspect: float64(ratioX) / float64(ratioY),
	}
}

// MaxAspectRegion is the maximum area allowed by rect around (centerX, centerY) at the
// ratioX:ratioY ratio.
func MaxAspectRegion(rect image.Rectangle, centerX int, centerY int, ratioX int, ratioY int) image.Rectangle {
	// We just need to find the max width here or use spoke
	x1 := centerX - rect.Min.X
	x2 := rect.Max.X - centerX
	y1 := centerY - rect.Min.Y
	y2 := rect.Max.Y - centerY

	// treat target as ratio
	_ratioX := float64(ratioX)
	_ratioY := float64(ratioY)

	minX := x1
	if x2 < x1 {
		minX = x2
	}
	minY := y1
	if y2 < y1 {
		minY = y2
	}

	// how many height can be taken, given limited width (min width)
	// how many width can be taken, given limited height (min height)
	maxWidth := float64(minY) * _ratioX / _ratioY
	maxHeight := float64(minX) * _ratioY / _ratioX

	var width, height float64

	width = float64(minX)
	if float64(minX) > maxWidth {
		width = maxWidth
	}
	height = float64(minY)
	if float64(minY) > maxHeight {
		height = maxHeight
	}

	if width*_ratioY > height*_ratioX {
		width = height * _ratioX / _ratioY
	} else {
		height = width * _ratioY / _ratioX
	}

	// the spokes were half sizes
	width = width * 2
	height = height * 2

	return cropByCenterWidthHeight(centerX, centerY, int(width), int(height))
}

func cropByCenterWidthHeight(centerX int, centerY int, width int, height int) image.Rectangle {
	_minx := float64(centerX) - float64(width)/2
	_miny := float64(centerY) - float64(height)/2
	_maxx := float64(centerX) + float64(width)/2
	_maxy := float64(centerY) + float64(height)/2

	return image.Rect(int(_minx), int(_miny), int(_maxx), int(_maxy))
}
