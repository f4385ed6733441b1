package screen

import (
	"fmt"
	"math"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

type MediumZoomConfig struct {
	AspectX  int     `mapstructure:"aspect_x"`
	AspectY  int     `mapstructure:"aspect_y"`
	MinScale float64 `mapstructure:"min_scale"`
	MaxScale float64 `mapstructure:"max_scale"`
	Step     float64 `mapstructure:"step"`
}

var _ ImageAdjustmentScreen = &mediumZoom{}

// mediumZoom draws a percent selection over the scaled and rotated image and exports
// exactly that selection as JPEG.
type mediumZoom struct {
	cfg MediumZoomConfig
}

func NewMediumZoom(cfg MediumZoomConfig) *mediumZoom {
	return &mediumZoom{cfg: cfg}
}

func (m *mediumZoom) Variant() Variant { return VariantMediumZoom }
func (m *mediumZoom) Title() string    { return "Medium zoom" }

func (m *mediumZoom) aspect() float64 {
	if m.cfg.AspectX <= 0 || m.cfg.AspectY <= 0 {
		return 0
	}
	return float64(m.cfg.AspectX) / float64(m.cfg.AspectY)
}

// frame is the size of the displayed image the percent selection refers to.
func (m *mediumZoom) frame(s *Session) (int, int) {
	w, h := s.natural()
	return imageproc.RotatedBounds(w, h, s.transform.Rotation)
}

func (m *mediumZoom) Defaults(s *Session) {
	s.transform = entity.IdentityTransform(entity.AnchorOffset)
	w, h := s.natural()
	sel := imageproc.ToPercent(imageproc.DefaultSelection(w, h, m.aspect()), w, h)
	s.selection = &sel
}

func (m *mediumZoom) Adjust(s *Session, e Event) error {
	switch e := e.(type) {
	case ZoomIn:
		s.transform.Scale = m.scale(s.transform.Scale + m.cfg.Step)
	case ZoomOut:
		s.transform.Scale = m.scale(s.transform.Scale - m.cfg.Step)
	case SetZoom:
		s.transform.Scale = m.scale(e.Value)
	case SetRotation:
		s.transform.Rotation = entity.NormalizeRotation(e.Degrees)
		// the frame may have changed shape under the percent selection
		if s.selection != nil {
			m.fit(s, *s.selection)
		}
	case SetSelection:
		m.fit(s, e.Region)
	default:
		return fmt.Errorf("%w: `%v` on %v", ErrUnknownEvent, e.Kind(), m.Variant())
	}
	s.cropped = true
	return nil
}

// fit stores region as a percent selection inside the current frame, at the screen's aspect.
func (m *mediumZoom) fit(s *Session, region entity.SelectionRegion) {
	w, h := m.frame(s)
	px := constrainAspect(clampSelection(imageproc.ToPixel(region, w, h), w, h), m.aspect())
	sel := imageproc.ToPercent(px, w, h)
	s.selection = &sel
}

func (m *mediumZoom) scale(v float64) float64 {
	return snap(clamp(v, math.Max(m.cfg.MinScale, entity.MinScale), m.cfg.MaxScale))
}

func (m *mediumZoom) CanExport(s *Session) bool {
	if s.selection == nil {
		return false
	}
	w, h := m.frame(s)
	px := imageproc.ToPixel(*s.selection, w, h)
	return px.Width >= 1 && px.Height >= 1
}

func (m *mediumZoom) render(s *Session) (*Rendered, error) {
	w, h := s.natural()
	region, err := imageproc.SelectionToRegion(*s.selection, w, h, s.transform)
	if err != nil {
		return nil, err
	}

	fw, fh := m.frame(s)
	px := imageproc.ToPixel(*s.selection, fw, fh)
	img, err := imageproc.RenderCrop(s.source.Image, region, s.transform, outputSize(px.Width), outputSize(px.Height))
	if err != nil {
		return nil, err
	}
	return &Rendered{Image: img, Format: entity.FormatJPEG, Region: &region}, nil
}

func (m *mediumZoom) Preview(s *Session) (*Rendered, error) {
	return m.render(s)
}

// Save always sends the original; the crop goes along only when the selection is usable.
func (m *mediumZoom) Save(s *Session, opts imageproc.ExportOptions) (*SaveRequest, error) {
	req := &SaveRequest{Metadata: entity.ExportMetadata{Selection: s.Selection()}}
	if !m.CanExport(s) {
		return req, nil
	}

	rendered, err := m.render(s)
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

// constrainAspect shrinks a pixel selection, keeping its origin, to width / height = aspect.
func constrainAspect(sel entity.SelectionRegion, aspect float64) entity.SelectionRegion {
	sel.Aspect = aspect
	if aspect <= 0 || sel.Empty() {
		return sel
	}
	if sel.Width/sel.Height > aspect {
		sel.Width = sel.Height * aspect
	} else {
		sel.Height = sel.Width / aspect
	}
	return sel
}
