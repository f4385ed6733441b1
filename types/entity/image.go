package entity

import (
	"image"
	"math"
)

// SourceImage is the uploaded image. It is never modified after upload;
// a new upload replaces it entirely.
type SourceImage struct {
	Name        string      `json:"name,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Format      string      `json:"format,omitempty"` // as reported by image.Decode
	Raw         []byte      `json:"-"`
	Image       image.Image `json:"-"`
	Width       int         `json:"width,omitempty"`  // natural width
	Height      int         `json:"height,omitempty"` // natural height
	DataURI     string      `json:"-"`
}

type PositionAnchor int32

const (
	// AnchorOffset position is a pixel offset of the pan gesture, 0,0 is centered
	AnchorOffset PositionAnchor = 0
	// AnchorFocal position is a normalized focal point in [0,1], 0.5,0.5 is centered
	AnchorFocal PositionAnchor = 1
)

func (a PositionAnchor) String() string {
	if a == AnchorFocal {
		return "focal"
	}
	return "offset"
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewTransform is the user adjustable scale, rotation and position applied before cropping.
type ViewTransform struct {
	Scale    float64        `json:"scale"`
	Rotation float64        `json:"rotation"` // degrees, clockwise
	Position Point          `json:"position"`
	Anchor   PositionAnchor `json:"anchor"`
}

// MinScale is the global floor for any screen's zoom.
const MinScale = 0.1

func IdentityTransform(anchor PositionAnchor) ViewTransform {
	t := ViewTransform{Scale: 1, Anchor: anchor}
	if anchor == AnchorFocal {
		t.Position = Point{X: 0.5, Y: 0.5}
	}
	return t
}

// IsIdentity reports whether the transform leaves the image as uploaded.
func (t ViewTransform) IsIdentity() bool {
	return t == IdentityTransform(t.Anchor)
}

// NormalizeRotation maps any angle into [0, 360).
func NormalizeRotation(degrees float64) float64 {
	r := math.Mod(degrees, 360)
	if r < 0 {
		r += 360
	}
	if r == 360 {
		return 0
	}
	return r
}

type Unit string

const (
	UnitPixel   Unit = "px"
	UnitPercent Unit = "%"
)

// SelectionRegion is the user's crop selection, either in pixels or in percent of
// the displayed frame.
type SelectionRegion struct {
	Unit   Unit    `json:"unit"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Aspect float64 `json:"aspect,omitempty"` // 0 is unconstrained
}

// Empty reports a degenerate selection.
func (s SelectionRegion) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

type Frame int32

const (
	// FrameSource addresses the source image pixels
	FrameSource Frame = 0
	// FrameRotated addresses the rotated (and scaled) intermediate surface
	FrameRotated Frame = 1
)

// SourceRect is an axis aligned rectangle in the pixel coordinates of Frame.
type SourceRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Frame  Frame   `json:"frame"`
}

func (r SourceRect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Format of an encoded image
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

func (f Format) ContentType() string {
	return "image/" + string(f)
}

func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// ExportArtifact is the encoded result of a preview or save.
type ExportArtifact struct {
	Data        []byte `json:"-"`
	Format      Format `json:"format,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Hash        string `json:"hash,omitempty"`
	Placeholder string `json:"placeholder,omitempty"` // tiny blurred data URL
	DataURI     string `json:"data_uri,omitempty"`
}

// Circle is the avatar editor's circular viewport.
type Circle struct {
	Diameter int    `json:"diameter"`
	Area     string `json:"area"` // square pixels, 2 decimals
}
