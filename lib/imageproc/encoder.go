package imageproc

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/desain-gratis/imageadjust/types/entity"
)

const (
	// DefaultJPEGQuality matches the browser canvas default (0.92)
	DefaultJPEGQuality = 92
	// DefaultPlaceholderPx is the width of the blurred placeholder
	DefaultPlaceholderPx = 16
)

// EncodeFunc writes img to w. quality is only meaningful for lossy formats.
type EncodeFunc func(w io.Writer, img image.Image, quality int) error

var (
	encodersMu sync.RWMutex
	encoders   = map[entity.Format]EncodeFunc{
		entity.FormatPNG:  encodePNG,
		entity.FormatJPEG: encodeJPEG,
	}
)

// RegisterEncoder makes a format available to Encode. Formats backed by cgo
// (webp) register themselves from their own package.
func RegisterEncoder(format entity.Format, fn EncodeFunc) {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	encoders[format] = fn
}

// Supported reports whether format has a registered encoder.
func Supported(format entity.Format) bool {
	encodersMu.RLock()
	defer encodersMu.RUnlock()
	_, ok := encoders[format]
	return ok
}

func encodePNG(w io.Writer, img image.Image, _ int) error {
	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	return enc.Encode(w, img)
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
}

// Encode serializes img. The output only depends on the pixels, the format and the
// fixed default quality.
func Encode(img image.Image, format entity.Format) ([]byte, error) {
	return EncodeQuality(img, format, DefaultJPEGQuality)
}

func EncodeQuality(img image.Image, format entity.Format, quality int) ([]byte, error) {
	encodersMu.RLock()
	fn, ok := encoders[format]
	encodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: '%v'", ErrUnsupportedFormat, format)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	buf := bytes.NewBuffer(make([]byte, 0))
	if err := fn(buf, img, quality); err != nil {
		return nil, fmt.Errorf("%w: failed to encode as %v", err, format)
	}
	return buf.Bytes(), nil
}

type ExportOptions struct {
	Quality       int
	PlaceholderPx int           // 0 uses DefaultPlaceholderPx, negative disables the placeholder
	Format        entity.Format // replaces the format a screen renders to when set
}

// FormatFor is the format an artifact rendered as screenFormat is encoded to.
func (o ExportOptions) FormatFor(screenFormat entity.Format) entity.Format {
	if o.Format != "" {
		return o.Format
	}
	return screenFormat
}

// Validate checks that the configured format has an encoder. webp only has one when
// the binary imports the webp package.
func (o ExportOptions) Validate() error {
	if o.Format != "" && !Supported(o.Format) {
		return fmt.Errorf("%w: '%v'", ErrUnsupportedFormat, o.Format)
	}
	return nil
}

// Export encodes img into an artifact together with its tiny placeholder.
func Export(img image.Image, format entity.Format, opts ExportOptions) (*entity.ExportArtifact, error) {
	format = opts.FormatFor(format)

	var data []byte
	var placeholder string

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		data, err = EncodeQuality(img, format, opts.Quality)
		return err
	})
	if opts.PlaceholderPx >= 0 {
		g.Go(func() error {
			var err error
			placeholder, err = Placeholder(img, format, opts.PlaceholderPx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entity.ExportArtifact{
		Data:        data,
		Format:      format,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		Hash:        Hash(data),
		Placeholder: placeholder,
		DataURI:     DataURI(format.ContentType(), data),
	}, nil
}

// Placeholder is a very small blurred version of img as a data URL.
func Placeholder(img image.Image, format entity.Format, px int) (string, error) {
	if px == 0 {
		px = DefaultPlaceholderPx
	}
	if img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", ErrInvalidOutput)
	}

	// the longer side measures px
	axis := ScaleHorizontal
	if img.Bounds().Dy() > img.Bounds().Dx() {
		axis = ScaleVertical
	}
	small := imaging.Blur(Scale(img, axis, px), 0.5)
	data, err := Encode(small, format)
	if err != nil {
		return "", err
	}
	return DataURI(format.ContentType(), data), nil
}

func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Hash of encoded bytes
func Hash(data []byte) string {
	h := fnv.New128()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(make([]byte, 0, 16)))
}

// ConfigHash identifies an original image together with the adjustment applied to it.
func ConfigHash(raw []byte, t entity.ViewTransform, region *entity.SourceRect) string {
	h := fnv.New128()

	// the raw image
	h.Write(raw)

	num := make([]byte, 8)
	write := func(f float64) {
		binary.BigEndian.PutUint64(num, math.Float64bits(f))
		h.Write(num)
	}
	write(t.Scale)
	write(entity.NormalizeRotation(t.Rotation))
	write(t.Position.X)
	write(t.Position.Y)
	write(float64(t.Anchor))
	if region != nil {
		write(region.X)
		write(region.Y)
		write(region.Width)
		write(region.Height)
		write(float64(region.Frame))
	}

	return base64.StdEncoding.EncodeToString(h.Sum(make([]byte, 0, 16)))
}
