package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrDecodeFailure   = errors.New("failed to decode image")
	ErrTooLarge        = errors.New("file too large")
)

// InvalidFileTypeMessage is shown to the user when an upload is rejected
const InvalidFileTypeMessage = "Please upload a valid image file (JPEG, PNG, GIF, or WebP)"

const DefaultMaxBytes = 20 << 20 // 20 Mb

var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Uploader struct {
	maxBytes int64
	allowed  map[string]struct{}
}

func New(maxBytes int64, allowedTypes []string) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &Uploader{maxBytes: maxBytes, allowed: allowed}
}

// Accept validates and decodes an uploaded file.
// The content type is sniffed from the data; the declared one is only used when sniffing
// is inconclusive.
func (u *Uploader) Accept(name string, declaredType string, r io.Reader) (*entity.SourceImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: error while reading data: %v", ErrDecodeFailure, err)
	}
	if int64(len(data)) > u.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %v bytes", ErrTooLarge, u.maxBytes)
	}

	contentType := sniff(data, declaredType)
	if _, ok := u.allowed[contentType]; !ok {
		return nil, fmt.Errorf("%w: '%v'. %v", ErrInvalidFileType, contentType, InvalidFileTypeMessage)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: '%v' as %v: %v", ErrDecodeFailure, name, contentType, err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: '%v' has no pixels", ErrDecodeFailure, name)
	}

	return &entity.SourceImage{
		Name:        name,
		ContentType: contentType,
		Format:      format,
		Raw:         data,
		Image:       img,
		Width:       b.Dx(),
		Height:      b.Dy(),
		DataURI:     imageproc.DataURI(contentType, data),
	}, nil
}

// AcceptDataURI accepts a base64 "data:" URL, the way a browser hands over a read file.
func (u *Uploader) AcceptDataURI(name string, uri string) (*entity.SourceImage, error) {
	data, contentType, err := ParseDataURI(uri)
	if err != nil {
		return nil, err
	}
	return u.Accept(name, contentType, bytes.NewReader(data))
}

func ParseDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("%w: not a base64 data url", ErrDecodeFailure)
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return data, contentType, nil
}

// sniff media type, don't follow blindly input
func sniff(data []byte, declared string) string {
	header := data
	if len(header) > 512 {
		header = header[:512]
	}
	contentType := http.DetectContentType(header)
	if contentType == "application/octet-stream" && declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			contentType = parsed
		}
	}
	return strings.ToLower(contentType)
}
