package upload_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/desain-gratis/imageadjust/delivery/upload"
	"github.com/desain-gratis/imageadjust/lib/imageproc"
)

func sample() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 90, A: 255})
		}
	}
	return img
}

func encoded(t *testing.T, format string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, sample())
	case "jpeg":
		err = jpeg.Encode(buf, sample(), nil)
	case "gif":
		err = gif.Encode(buf, sample(), nil)
	}
	if err != nil {
		t.Fatalf("encode %v: %v", format, err)
	}
	return buf.Bytes()
}

// bmp is a 1x1 24 bit windows bitmap
var bmp = []byte{
	'B', 'M', 58, 0, 0, 0, 0, 0, 0, 0, 54, 0, 0, 0,
	40, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 24, 0, 0, 0, 0, 0, 4, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	255, 0, 0, 0,
}

func Test_Accept(t *testing.T) {
	u := upload.New(0, nil)
	tests := []struct {
		name     string
		format   string
		wantType string
	}{
		{"png", "png", "image/png"},
		{"jpeg", "jpeg", "image/jpeg"},
		{"gif", "gif", "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encoded(t, tt.format)
			got, err := u.Accept("photo."+tt.format, "", bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Accept() error = %v", err)
			}
			if got.ContentType != tt.wantType || got.Format != tt.format {
				t.Errorf("Accept() type = %v format = %v", got.ContentType, got.Format)
			}
			if got.Width != 40 || got.Height != 30 {
				t.Errorf("Accept() size = %vx%v", got.Width, got.Height)
			}
			if !bytes.Equal(got.Raw, data) {
				t.Errorf("Accept() raw bytes altered")
			}
			if !strings.HasPrefix(got.DataURI, "data:"+tt.wantType+";base64,") {
				t.Errorf("Accept() data uri = %.30v", got.DataURI)
			}
		})
	}
}

func Test_Accept_rejects(t *testing.T) {
	u := upload.New(1<<20, nil)
	tests := []struct {
		name     string
		data     []byte
		declared string
		want     error
	}{
		{"bmp", bmp, "image/bmp", upload.ErrInvalidFileType},
		{"bmp declared as png", bmp, "image/png", upload.ErrInvalidFileType},
		{"text", []byte("hello, not an image"), "image/png", upload.ErrInvalidFileType},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), "", upload.ErrDecodeFailure},
		{"unknown bytes declared as png", []byte{0, 1, 2, 3, 4, 5}, "image/png", upload.ErrDecodeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := u.Accept(tt.name, tt.declared, bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Accept() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func Test_Accept_message(t *testing.T) {
	_, err := upload.New(0, nil).Accept("x.bmp", "", bytes.NewReader(bmp))
	if err == nil || !strings.Contains(err.Error(), upload.InvalidFileTypeMessage) {
		t.Errorf("Accept() error = %v", err)
	}
}

func Test_Accept_tooLarge(t *testing.T) {
	data := encoded(t, "png")
	_, err := upload.New(int64(len(data)-1), nil).Accept("big.png", "", bytes.NewReader(data))
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Errorf("Accept() error = %v, want %v", err, upload.ErrTooLarge)
	}
}

func Test_Accept_allowedTypes(t *testing.T) {
	_, err := upload.New(0, []string{"image/png"}).Accept("a.gif", "", bytes.NewReader(encoded(t, "gif")))
	if !errors.Is(err, upload.ErrInvalidFileType) {
		t.Errorf("Accept() error = %v, want %v", err, upload.ErrInvalidFileType)
	}
}

func Test_AcceptDataURI(t *testing.T) {
	data := encoded(t, "png")
	uri := imageproc.DataURI("image/png", data)

	got, err := upload.New(0, nil).AcceptDataURI("drop.png", uri)
	if err != nil {
		t.Fatalf("AcceptDataURI() error = %v", err)
	}
	if !bytes.Equal(got.Raw, data) {
		t.Errorf("AcceptDataURI() raw bytes altered")
	}

	if _, err := upload.New(0, nil).AcceptDataURI("x", "not a data url"); !errors.Is(err, upload.ErrDecodeFailure) {
		t.Errorf("AcceptDataURI() error = %v", err)
	}
}
