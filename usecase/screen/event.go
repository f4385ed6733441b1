package screen

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

// Event is a user action or a collaborator callback delivered to a session.
type Event interface {
	Kind() string
}

type (
	// BeginUpload hands out a ticket for the decode that follows.
	BeginUpload struct{}

	Uploaded struct {
		Ticket uint64              `json:"ticket"`
		Source *entity.SourceImage `json:"-"`
	}

	UploadFailed struct {
		Ticket uint64 `json:"ticket"`
		Err    error  `json:"-"`
	}

	ZoomIn  struct{}
	ZoomOut struct{}

	SetZoom struct {
		Value float64 `json:"value"`
	}

	SetRotation struct {
		Degrees float64 `json:"degrees"`
	}

	// Pan sets the pan offset in pixels.
	Pan struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	// SetFocal sets the normalized focal point.
	SetFocal struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}

	SetSelection struct {
		Region entity.SelectionRegion `json:"region"`
	}

	AdjustStart  struct{}
	AdjustEnd    struct{}
	Preview      struct{}
	ClosePreview struct{}
	Save         struct{}
	Reset        struct{}
	Cancel       struct{}
)

func (BeginUpload) Kind() string  { return "begin_upload" }
func (Uploaded) Kind() string     { return "uploaded" }
func (UploadFailed) Kind() string { return "upload_failed" }
func (ZoomIn) Kind() string       { return "zoom_in" }
func (ZoomOut) Kind() string      { return "zoom_out" }
func (SetZoom) Kind() string      { return "set_zoom" }
func (SetRotation) Kind() string  { return "set_rotation" }
func (Pan) Kind() string          { return "pan" }
func (SetFocal) Kind() string     { return "set_focal" }
func (SetSelection) Kind() string { return "set_selection" }
func (AdjustStart) Kind() string  { return "adjust_start" }
func (AdjustEnd) Kind() string    { return "adjust_end" }
func (Preview) Kind() string      { return "preview" }
func (ClosePreview) Kind() string { return "close_preview" }
func (Save) Kind() string         { return "save" }
func (Reset) Kind() string        { return "reset" }
func (Cancel) Kind() string       { return "cancel" }

// EventMessage is the JSON form of a user event:
//
//	{"kind": "set_zoom", "payload": {"value": 1.5}}
type EventMessage struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeEvent builds a user event from its JSON form. Collaborator callbacks
// (uploaded, upload_failed) cannot be sent this way.
func DecodeEvent(msg EventMessage) (Event, error) {
	switch msg.Kind {
	case "zoom_in":
		return ZoomIn{}, nil
	case "zoom_out":
		return ZoomOut{}, nil
	case "adjust_start":
		return AdjustStart{}, nil
	case "adjust_end":
		return AdjustEnd{}, nil
	case "preview":
		return Preview{}, nil
	case "close_preview":
		return ClosePreview{}, nil
	case "save":
		return Save{}, nil
	case "reset":
		return Reset{}, nil
	case "cancel":
		return Cancel{}, nil
	case "set_zoom":
		return decodePayload[SetZoom](msg)
	case "set_rotation":
		return decodePayload[SetRotation](msg)
	case "pan":
		return decodePayload[Pan](msg)
	case "set_focal":
		return decodePayload[SetFocal](msg)
	case "set_selection":
		return decodePayload[SetSelection](msg)
	}
	return nil, fmt.Errorf("%w: `%v`", ErrUnknownEvent, msg.Kind)
}

func decodePayload[T Event](msg EventMessage) (Event, error) {
	var v T
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("%w: `%v` requires a payload", ErrUnknownEvent, msg.Kind)
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return nil, fmt.Errorf("%w: invalid payload for `%v`", err, msg.Kind)
	}
	return v, nil
}

// checkFinite rejects adjustments carrying NaN or infinite values.
func checkFinite(e Event) error {
	var values []float64
	target := imageproc.ErrInvalidTransform
	switch e := e.(type) {
	case SetZoom:
		values = []float64{e.Value}
	case SetRotation:
		values = []float64{e.Degrees}
	case Pan:
		values = []float64{e.X, e.Y}
	case SetFocal:
		values = []float64{e.X, e.Y}
	case SetSelection:
		values = []float64{e.Region.X, e.Region.Y, e.Region.Width, e.Region.Height}
		target = imageproc.ErrInvalidRegion
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: `%v` with %v", target, e.Kind(), v)
		}
	}
	return nil
}
