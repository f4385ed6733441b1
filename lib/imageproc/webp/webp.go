// Package webp registers the libwebp backed encoder for entity.FormatWebP.
// It needs cgo and libwebp, so it is imported for side effects only by binaries:
//
//	import _ "github.com/desain-gratis/imageadjust/lib/imageproc/webp"
package webp

import (
	"image"
	"io"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

func init() {
	imageproc.RegisterEncoder(entity.FormatWebP, Encode)
}

// Encode writes img as lossy webp.
func Encode(w io.Writer, img image.Image, quality int) error {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
	if err != nil {
		return err
	}
	return webp.Encode(w, img, options)
}
