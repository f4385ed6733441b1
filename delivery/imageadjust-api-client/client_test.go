package imageadjustapiclient

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
)

func Test_logClient_Submit(t *testing.T) {
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	c := &logClient{now: func() time.Time { return at }}

	payload := &imageproc.Payload{ContentType: "multipart/form-data; boundary=x", Body: []byte("0123456789"), Parts: []string{"document", "originalImage"}}
	metadata := entity.ExportMetadata{Screen: "avatar", Hash: "abc", Circle: &entity.Circle{Diameter: 150, Area: "17671.46"}}

	got, err := c.Submit(context.Background(), metadata, payload)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want := &Receipt{
		Screen:      "avatar",
		Parts:       []string{"document", "originalImage"},
		ContentType: "multipart/form-data; boundary=x",
		Size:        10,
		Hash:        "abc",
		At:          at,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Submit() = %+v, want %+v", got, want)
	}
}

func Test_logClient_Submit_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLogOnly().Submit(ctx, entity.ExportMetadata{}, &imageproc.Payload{}); err == nil {
		t.Errorf("Submit() should fail on a cancelled context")
	}
}
