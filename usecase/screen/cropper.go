package screen

import (
	"fmt"
	"math"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

type CropperConfig struct {
	AspectX      int     `mapstructure:"aspect_x"`
	AspectY      int     `mapstructure:"aspect_y"`
	AutoCropArea float64 `mapstructure:"auto_crop_area"`
	MaxZoom      float64 `mapstructure:"max_zoom"`
	ZoomStep     float64 `mapstructure:"zoom_step"`
}

var _ ImageAdjustmentScreen = &cropper{}

// cropper keeps a pixel selection over the image. The zoom slider magnifies the image
// under a crop box that stays put, so zooming in shrinks the selected source area.
type cropper struct {
	cfg CropperConfig
}

func NewCropper(cfg CropperConfig) *cropper {
	return &cropper{cfg: cfg}
}

func (c *cropper) Variant() Variant { return VariantCropper }
func (c *cropper) Title() string    { return "Cropper" }

// Defaults places the auto crop box. Placing it counts as a crop, so a fresh upload can
// be previewed right away; Reset clears the flag afterwards.
func (c *cropper) Defaults(s *Session) {
	s.transform = entity.IdentityTransform(entity.AnchorOffset)
	w, h := s.natural()
	sel := imageproc.AutoCropRegion(w, h, c.cfg.AspectX, c.cfg.AspectY, c.cfg.AutoCropArea)
	s.selection = &sel
	s.cropped = true
}

// zoom is the slider value; the display scale is 1 + zoom.
func (c *cropper) zoom(s *Session) float64 {
	return s.transform.Scale - 1
}

func (c *cropper) Adjust(s *Session, e Event) error {
	switch e := e.(type) {
	case ZoomIn:
		c.zoomTo(s, c.zoom(s)+c.cfg.ZoomStep)
	case ZoomOut:
		c.zoomTo(s, c.zoom(s)-c.cfg.ZoomStep)
	case SetZoom:
		c.zoomTo(s, e.Value)
	case SetSelection:
		w, h := s.natural()
		sel := clampSelection(imageproc.ToPixel(e.Region, w, h), w, h)
		s.selection = &sel
	default:
		return fmt.Errorf("%w: `%v` on %v", ErrUnknownEvent, e.Kind(), c.Variant())
	}
	s.cropped = true
	return nil
}

func (c *cropper) zoomTo(s *Session, zoom float64) {
	next := 1 + snap(clamp(zoom, 0, c.cfg.MaxZoom))
	if s.selection != nil {
		ratio := s.transform.Scale / next
		sel := *s.selection
		cx, cy := sel.X+sel.Width/2, sel.Y+sel.Height/2
		sel.Width *= ratio
		sel.Height *= ratio
		sel.X = cx - sel.Width/2
		sel.Y = cy - sel.Height/2
		s.selection = &sel
	}
	s.transform.Scale = next
}

func (c *cropper) CanExport(s *Session) bool {
	return s.cropped && s.selection != nil && !s.selection.Empty()
}

func (c *cropper) Preview(s *Session) (*Rendered, error) {
	return c.render(s)
}

// render draws the selection at its own pixel size.
func (c *cropper) render(s *Session) (*Rendered, error) {
	sel := *s.selection
	region := entity.SourceRect{X: sel.X, Y: sel.Y, Width: sel.Width, Height: sel.Height, Frame: entity.FrameSource}
	img, err := imageproc.RenderCrop(s.source.Image, region, entity.IdentityTransform(entity.AnchorOffset), outputSize(sel.Width), outputSize(sel.Height))
	if err != nil {
		return nil, err
	}
	return &Rendered{Image: img, Format: entity.FormatPNG, Region: &region}, nil
}

// Save sends the crop unless the cropper was reset, the untouched upload otherwise.
func (c *cropper) Save(s *Session, opts imageproc.ExportOptions) (*SaveRequest, error) {
	req := &SaveRequest{Metadata: entity.ExportMetadata{Selection: s.Selection()}}
	if !s.cropped {
		return req, nil
	}
	if !c.CanExport(s) {
		return nil, fmt.Errorf("%w: %w", ErrActionDisabled, imageproc.ErrInvalidRegion)
	}

	rendered, err := c.render(s)
	if err != nil {
		return nil, err
	}
	artifact, err := imageproc.Export(rendered.Image, rendered.Format, opts)
	if err != nil {
		return nil, err
	}
	req.Artifacts.Cropped = artifact
	req.Metadata.Region = rendered.Region
	req.Metadata.Cropped = true
	return req, nil
}

// clampSelection keeps a pixel selection inside a width x height image.
func clampSelection(sel entity.SelectionRegion, width, height int) entity.SelectionRegion {
	w, h := float64(width), float64(height)
	x0 := clamp(sel.X, 0, w)
	y0 := clamp(sel.Y, 0, h)
	x1 := clamp(sel.X+sel.Width, 0, w)
	y1 := clamp(sel.Y+sel.Height, 0, h)
	sel.X, sel.Y = x0, y0
	sel.Width = math.Max(0, x1-x0)
	sel.Height = math.Max(0, y1-y0)
	return sel
}
