package screen

import (
	"fmt"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

type ZoomPanPinchConfig struct {
	FrameWidth  int     `mapstructure:"frame_width"`
	FrameHeight int     `mapstructure:"frame_height"`
	MinScale    float64 `mapstructure:"min_scale"`
	MaxScale    float64 `mapstructure:"max_scale"`
	Step        float64 `mapstructure:"step"`
}

var _ ImageAdjustmentScreen = &zoomPanPinch{}

// zoomPanPinch shows the image in a fixed frame with free zoom and pan.
type zoomPanPinch struct {
	cfg ZoomPanPinchConfig
}

func NewZoomPanPinch(cfg ZoomPanPinchConfig) *zoomPanPinch {
	return &zoomPanPinch{cfg: cfg}
}

func (z *zoomPanPinch) Variant() Variant { return VariantZoomPanPinch }
func (z *zoomPanPinch) Title() string    { return "Zoom, pan & pinch" }

func (z *zoomPanPinch) Defaults(s *Session) {
	s.transform = entity.IdentityTransform(entity.AnchorOffset)
}

func (z *zoomPanPinch) Adjust(s *Session, e Event) error {
	switch e := e.(type) {
	case ZoomIn:
		z.zoomTo(s, s.transform.Scale+z.cfg.Step)
	case ZoomOut:
		z.zoomTo(s, s.transform.Scale-z.cfg.Step)
	case SetZoom:
		z.zoomTo(s, e.Value)
	case Pan:
		s.transform.Position = entity.Point{X: e.X, Y: e.Y}
	default:
		return fmt.Errorf("%w: `%v` on %v", ErrUnknownEvent, e.Kind(), z.Variant())
	}
	s.cropped = !s.transform.IsIdentity()
	return nil
}

// zoomTo keeps the point at the center of the frame in place.
func (z *zoomPanPinch) zoomTo(s *Session, scale float64) {
	next := snap(clamp(scale, z.cfg.MinScale, z.cfg.MaxScale))
	s.transform.Position.X = s.transform.Position.X * next / s.transform.Scale
	s.transform.Position.Y = s.transform.Position.Y * next / s.transform.Scale
	s.transform.Scale = next
}

func (z *zoomPanPinch) CanExport(s *Session) bool {
	return s.source != nil
}

func (z *zoomPanPinch) render(s *Session) (*Rendered, error) {
	w, h := s.natural()
	region, err := imageproc.ComputeVisibleRegion(w, h, s.transform, z.cfg.FrameWidth, z.cfg.FrameHeight)
	if err != nil {
		return nil, err
	}
	img, err := imageproc.RenderCrop(s.source.Image, region, s.transform, z.cfg.FrameWidth, z.cfg.FrameHeight)
	if err != nil {
		return nil, err
	}
	return &Rendered{Image: img, Format: entity.FormatPNG, Region: &region}, nil
}

func (z *zoomPanPinch) Preview(s *Session) (*Rendered, error) {
	return z.render(s)
}

// Save exports what the frame shows once the user zoomed or panned, the whole image otherwise.
func (z *zoomPanPinch) Save(s *Session, opts imageproc.ExportOptions) (*SaveRequest, error) {
	rendered := &Rendered{Image: imageproc.RenderFull(s.source.Image), Format: entity.FormatPNG}
	if !s.transform.IsIdentity() {
		var err error
		rendered, err = z.render(s)
		if err != nil {
			return nil, err
		}
	}

	artifact, err := imageproc.Export(rendered.Image, rendered.Format, opts)
	if err != nil {
		return nil, err
	}
	return &SaveRequest{
		Artifacts: imageproc.UploadArtifacts{Cropped: artifact},
		Metadata: entity.ExportMetadata{
			Region:  rendered.Region,
			Cropped: rendered.Region != nil,
		},
	}, nil
}
