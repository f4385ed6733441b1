package entity

import (
	"time"
)

// ExportMetadata goes along the exported image as the `document` part of the
// upload payload.
type ExportMetadata struct {
	Id          string           `json:"id,omitempty"`
	Screen      string           `json:"screen,omitempty"`
	Name        string           `json:"name,omitempty"` // name of the original upload
	ContentType string           `json:"content_type,omitempty"`
	ContentSize uint64           `json:"content_size,omitempty"`
	Transform   ViewTransform    `json:"transform"`
	Selection   *SelectionRegion `json:"selection,omitempty"`
	Region      *SourceRect      `json:"region,omitempty"`
	Circle      *Circle          `json:"circle,omitempty"`
	Cropped     bool             `json:"cropped"`
	CreatedAt   string           `json:"created_at,omitempty"`
	Hash        string           `json:"hash,omitempty"` // hash of the original + adjustment
}

func (c *ExportMetadata) WithCreatedTime(t time.Time) *ExportMetadata {
	c.CreatedAt = t.Format(time.RFC3339)
	return c
}
