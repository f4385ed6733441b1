package imageadjustapiclient

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

// Submitter hands a prepared save payload to the backend.
type Submitter interface {
	Submit(ctx context.Context, metadata entity.ExportMetadata, payload *imageproc.Payload) (*Receipt, error)
}

// Receipt describes what was handed over.
type Receipt struct {
	Screen      string    `json:"screen"`
	Parts       []string  `json:"parts"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Hash        string    `json:"hash"`
	Transmitted bool      `json:"transmitted"`
	At          time.Time `json:"at"`
}

var _ Submitter = &logClient{}

// logClient stands in for the upload API: there is no backend yet, so it only logs.
type logClient struct {
	now func() time.Time
}

func NewLogOnly() *logClient {
	return &logClient{now: time.Now}
}

func (c *logClient) Submit(ctx context.Context, metadata entity.ExportMetadata, payload *imageproc.Payload) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Screen:      metadata.Screen,
		Parts:       payload.Parts,
		ContentType: payload.ContentType,
		Size:        len(payload.Body),
		Hash:        metadata.Hash,
		At:          c.now(),
	}

	log.Info().
		Str("screen", metadata.Screen).
		Str("name", metadata.Name).
		Strs("parts", payload.Parts).
		Int("size", len(payload.Body)).
		Float64("scale", metadata.Transform.Scale).
		Float64("rotate", metadata.Transform.Rotation).
		Bool("cropped", metadata.Cropped).
		Msgf("Image data prepared for API")
	if metadata.Circle != nil {
		log.Info().Msgf("Circle data: diameter %v area %v", metadata.Circle.Diameter, metadata.Circle.Area)
	}

	return receipt, nil
}
