package screen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	imageadjustapiclient "github.com/desain-gratis/imageadjust/delivery/imageadjust-api-client"
	"github.com/desain-gratis/imageadjust/delivery/upload"
	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

type Options struct {
	Export    imageproc.ExportOptions
	Submitter imageadjustapiclient.Submitter
	Now       func() time.Time
}

// Result is what a dispatched event produced.
type Result struct {
	State    State                         `json:"state"`
	Ticket   uint64                        `json:"ticket,omitempty"`
	Ignored  bool                          `json:"ignored,omitempty"` // stale upload
	Artifact *entity.ExportArtifact        `json:"artifact,omitempty"`
	Receipt  *imageadjustapiclient.Receipt `json:"receipt,omitempty"`
}

// Snapshot is the observable state of a session.
type Snapshot struct {
	Variant   Variant                 `json:"variant"`
	State     string                  `json:"state"`
	Source    *entity.SourceImage     `json:"source,omitempty"`
	Transform entity.ViewTransform    `json:"transform"`
	Selection *entity.SelectionRegion `json:"selection,omitempty"`
	Cropped   bool                    `json:"cropped"`
	CanExport bool                    `json:"can_export"`
	Preview   *entity.ExportArtifact  `json:"preview,omitempty"`
}

// Session is the state machine of one screen instance. It is not safe for
// concurrent use; callers serialize events.
type Session struct {
	screen ImageAdjustmentScreen
	opts   Options

	state     State
	source    *entity.SourceImage
	transform entity.ViewTransform
	selection *entity.SelectionRegion
	cropped   bool
	preview   *entity.ExportArtifact

	// ticket of the latest BeginUpload; only its decode may load
	ticket uint64
}

func NewSession(screen ImageAdjustmentScreen, opts Options) *Session {
	if opts.Submitter == nil {
		opts.Submitter = imageadjustapiclient.NewLogOnly()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{screen: screen, opts: opts}
}

func (s *Session) Screen() ImageAdjustmentScreen   { return s.screen }
func (s *Session) State() State                    { return s.state }
func (s *Session) Source() *entity.SourceImage     { return s.source }
func (s *Session) Transform() entity.ViewTransform { return s.transform }

// Selection is nil on screens without a selection.
func (s *Session) Selection() *entity.SelectionRegion {
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

func (s *Session) Cropped() bool                      { return s.cropped }
func (s *Session) LastPreview() *entity.ExportArtifact { return s.preview }

func (s *Session) CanExport() bool {
	return s.source != nil && s.screen.CanExport(s)
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Variant:   s.screen.Variant(),
		State:     s.state.String(),
		Source:    s.source,
		Transform: s.transform,
		Selection: s.Selection(),
		Cropped:   s.cropped,
		CanExport: s.CanExport(),
		Preview:   s.preview,
	}
}

// Dispatch applies one event.
func (s *Session) Dispatch(ctx context.Context, e Event) (*Result, error) {
	log.Debug().Str("screen", string(s.screen.Variant())).Str("event", e.Kind()).Str("state", s.state.String()).Msg("dispatch")

	switch e := e.(type) {
	case BeginUpload:
		s.ticket++
		return s.result(func(r *Result) { r.Ticket = s.ticket }), nil

	case Uploaded:
		if e.Ticket != s.ticket {
			log.Debug().Msgf("ignoring stale upload %v, latest is %v", e.Ticket, s.ticket)
			return s.result(func(r *Result) { r.Ignored = true }), nil
		}
		if e.Source == nil || e.Source.Image == nil {
			return nil, fmt.Errorf("%w: upload without an image", ErrNoImage)
		}
		s.load(e.Source)
		return s.result(nil), nil

	case UploadFailed:
		if e.Ticket != s.ticket {
			return s.result(func(r *Result) { r.Ignored = true }), nil
		}
		// prior state is kept
		if e.Err == nil {
			return nil, fmt.Errorf("%w: upload failed without a reason", upload.ErrDecodeFailure)
		}
		return nil, e.Err

	case Cancel:
		// in flight decodes must not repopulate the screen
		s.ticket++
		s.source = nil
		s.selection = nil
		s.preview = nil
		s.cropped = false
		s.transform = entity.ViewTransform{}
		s.state = StateEmpty
		return s.result(nil), nil
	}

	if s.source == nil {
		return nil, fmt.Errorf("%w: `%v`", ErrNoImage, e.Kind())
	}

	switch e := e.(type) {
	case Reset:
		s.preview = nil
		s.selection = nil
		s.screen.Defaults(s)
		s.cropped = false
		s.state = StateLoaded
		return s.result(nil), nil

	case AdjustStart:
		if s.state == StatePreviewOpen {
			return nil, fmt.Errorf("%w: close the preview first", ErrActionDisabled)
		}
		s.state = StateAdjusting
		return s.result(nil), nil

	case AdjustEnd:
		if s.state == StateAdjusting {
			s.state = StateLoaded
		}
		return s.result(nil), nil

	case ClosePreview:
		if s.state == StatePreviewOpen {
			s.state = StateLoaded
		}
		return s.result(nil), nil

	case Preview:
		return s.openPreview()

	case Save:
		return s.save(ctx)

	default:
		if s.state == StatePreviewOpen {
			return nil, fmt.Errorf("%w: close the preview first", ErrActionDisabled)
		}
		if err := checkFinite(e); err != nil {
			return nil, err
		}
		if err := s.screen.Adjust(s, e); err != nil {
			return nil, err
		}
		return s.result(nil), nil
	}
}

func (s *Session) load(src *entity.SourceImage) {
	s.source = src
	s.preview = nil
	s.cropped = false
	s.selection = nil
	s.screen.Defaults(s)
	s.state = StateLoaded
	log.Info().Str("screen", string(s.screen.Variant())).Msgf("Loaded %v (%vx%v)", src.Name, src.Width, src.Height)
}

func (s *Session) openPreview() (*Result, error) {
	if !s.screen.CanExport(s) {
		return nil, fmt.Errorf("%w: %w", ErrActionDisabled, imageproc.ErrInvalidRegion)
	}
	rendered, err := s.screen.Preview(s)
	if err != nil {
		return nil, err
	}
	artifact, err := imageproc.Export(rendered.Image, rendered.Format, s.opts.Export)
	if err != nil {
		return nil, err
	}
	s.preview = artifact
	s.state = StatePreviewOpen
	return s.result(func(r *Result) { r.Artifact = artifact }), nil
}

func (s *Session) save(ctx context.Context) (*Result, error) {
	req, err := s.screen.Save(s, s.opts.Export)
	if err != nil {
		return nil, err
	}

	metadata := req.Metadata
	metadata.Id = uuid.NewString()
	metadata.Screen = string(s.screen.Variant())
	metadata.Name = s.source.Name
	metadata.ContentType = s.source.ContentType
	metadata.ContentSize = uint64(len(s.source.Raw))
	metadata.Transform = s.transform
	metadata.WithCreatedTime(s.opts.Now())
	metadata.Hash = imageproc.ConfigHash(s.source.Raw, s.transform, metadata.Region)

	if req.Artifacts.Original == nil {
		req.Artifacts.Original = s.source.Raw
		req.Artifacts.OriginalName = s.source.Name
	}

	payload, err := imageproc.ToUploadPayload(req.Artifacts, metadata)
	if err != nil {
		return nil, err
	}
	receipt, err := s.opts.Submitter.Submit(ctx, metadata, payload)
	if err != nil {
		return nil, err
	}

	return s.result(func(r *Result) {
		r.Artifact = req.Artifacts.Cropped
		r.Receipt = receipt
	}), nil
}

func (s *Session) result(fill func(r *Result)) *Result {
	r := &Result{State: s.state}
	if fill != nil {
		fill(r)
	}
	return r
}

// natural is the size of the loaded image.
func (s *Session) natural() (int, int) {
	return s.source.Width, s.source.Height
}
