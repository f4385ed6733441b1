package screen

import (
	"errors"
	"image"
	"math"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

var (
	ErrActionDisabled = errors.New("action disabled")
	ErrNoImage        = errors.New("no image loaded")
	ErrUnknownVariant = errors.New("unknown screen")
	ErrUnknownEvent   = errors.New("event not supported by this screen")
	ErrNoScreen       = errors.New("no screen selected")
)

type Variant string

const (
	VariantZoomPanPinch Variant = "zoom-pan-pinch"
	VariantCropper      Variant = "cropper"
	VariantAvatar       Variant = "avatar"
	VariantMediumZoom   Variant = "medium-zoom"
)

type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateAdjusting
	StatePreviewOpen
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateAdjusting:
		return "adjusting"
	case StatePreviewOpen:
		return "preview_open"
	}
	return "empty"
}

// Rendered is what a screen hands to the encoder.
type Rendered struct {
	Image  image.Image
	Format entity.Format
	Region *entity.SourceRect // nil when the whole image is exported
}

// SaveRequest is the screen specific part of a save.
type SaveRequest struct {
	Artifacts imageproc.UploadArtifacts
	Metadata  entity.ExportMetadata
}

// ImageAdjustmentScreen is one of the demo screens. The session owns the state machine;
// the screen decides what the adjustments mean and how the result is rendered.
type ImageAdjustmentScreen interface {
	Variant() Variant
	Title() string

	// Defaults sets the transform and selection for a freshly loaded (or reset) image.
	Defaults(s *Session)

	// Adjust applies an adjustment event. Unsupported events return ErrUnknownEvent.
	Adjust(s *Session, e Event) error

	// CanExport gates Preview.
	CanExport(s *Session) bool

	Preview(s *Session) (*Rendered, error)
	Save(s *Session, opts imageproc.ExportOptions) (*SaveRequest, error)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// snap drops float noise accumulated by repeated slider steps.
func snap(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func outputSize(v float64) int {
	return max(1, int(math.Round(v)))
}
