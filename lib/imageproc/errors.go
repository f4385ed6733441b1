package imageproc

import "errors"

var (
	ErrInvalidRegion     = errors.New("invalid region")
	ErrInvalidTransform  = errors.New("invalid transform")
	ErrInvalidOutput     = errors.New("invalid output size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)
