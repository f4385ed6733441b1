package screen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

type AvatarConfig struct {
	Width          int     `mapstructure:"width"`
	Height         int     `mapstructure:"height"`
	CircleDiameter int     `mapstructure:"circle_diameter"`
	MinScale       float64 `mapstructure:"min_scale"`
	MaxScale       float64 `mapstructure:"max_scale"`
	Step           float64 `mapstructure:"step"`
}

var _ ImageAdjustmentScreen = &avatar{}

// avatar frames the image in a fixed canvas around a focal point, with a circular guide.
type avatar struct {
	cfg AvatarConfig
}

func NewAvatar(cfg AvatarConfig) *avatar {
	return &avatar{cfg: cfg}
}

func (a *avatar) Variant() Variant { return VariantAvatar }
func (a *avatar) Title() string    { return "Avatar" }

func (a *avatar) Defaults(s *Session) {
	s.transform = entity.IdentityTransform(entity.AnchorFocal)
}

func (a *avatar) Adjust(s *Session, e Event) error {
	switch e := e.(type) {
	case ZoomIn:
		s.transform.Scale = a.scale(s.transform.Scale + a.cfg.Step)
	case ZoomOut:
		s.transform.Scale = a.scale(s.transform.Scale - a.cfg.Step)
	case SetZoom:
		s.transform.Scale = a.scale(e.Value)
	case SetFocal:
		s.transform.Position = entity.Point{X: clamp(e.X, 0, 1), Y: clamp(e.Y, 0, 1)}
	default:
		return fmt.Errorf("%w: `%v` on %v", ErrUnknownEvent, e.Kind(), a.Variant())
	}
	s.cropped = !s.transform.IsIdentity()
	return nil
}

func (a *avatar) scale(v float64) float64 {
	return snap(clamp(v, a.cfg.MinScale, a.cfg.MaxScale))
}

func (a *avatar) CanExport(s *Session) bool {
	return s.source != nil
}

func (a *avatar) canvas(s *Session) (*Rendered, error) {
	w, h := s.natural()
	region, err := imageproc.ComputeVisibleRegion(w, h, s.transform, a.cfg.Width, a.cfg.Height)
	if err != nil {
		return nil, err
	}
	img, err := imageproc.RenderCrop(s.source.Image, region, s.transform, a.cfg.Width, a.cfg.Height)
	if err != nil {
		return nil, err
	}
	return &Rendered{Image: img, Format: entity.FormatPNG, Region: &region}, nil
}

// Preview is the canvas, as Save sends it.
func (a *avatar) Preview(s *Session) (*Rendered, error) {
	return a.canvas(s)
}

// Save sends the canvas, plus the part of it inside the circular guide.
func (a *avatar) Save(s *Session, opts imageproc.ExportOptions) (*SaveRequest, error) {
	rendered, err := a.canvas(s)
	if err != nil {
		return nil, err
	}
	artifact, err := imageproc.Export(rendered.Image, rendered.Format, opts)
	if err != nil {
		return nil, err
	}

	circle, err := imageproc.CircleMask(rendered.Image, a.cfg.CircleDiameter)
	if err != nil {
		return nil, err
	}
	// the cut-out needs alpha, so it stays png whatever the export format is
	opts.Format = ""
	cutout, err := imageproc.Export(circle, entity.FormatPNG, opts)
	if err != nil {
		return nil, err
	}

	return &SaveRequest{
		Artifacts: imageproc.UploadArtifacts{Cropped: artifact, Circle: cutout},
		Metadata: entity.ExportMetadata{
			Region:  rendered.Region,
			Circle:  CircleData(a.cfg.CircleDiameter),
			Cropped: true,
		},
	}, nil
}

// CircleData describes the circular viewport; the area is in square pixels with 2 decimals.
func CircleData(diameter int) *entity.Circle {
	r := float64(diameter) / 2
	return &entity.Circle{
		Diameter: diameter,
		Area:     strconv.FormatFloat(math.Pi*r*r, 'f', 2, 64),
	}
}
