package screen

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/desain-gratis/imageadjust/types/entity"
)

func Test_DecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		want    Event
		wantErr error
	}{
		{"zoom in", `{"kind":"zoom_in"}`, ZoomIn{}, nil},
		{"cancel", `{"kind":"cancel"}`, Cancel{}, nil},
		{"set zoom", `{"kind":"set_zoom","payload":{"value":1.5}}`, SetZoom{Value: 1.5}, nil},
		{"rotation", `{"kind":"set_rotation","payload":{"degrees":-90}}`, SetRotation{Degrees: -90}, nil},
		{"pan", `{"kind":"pan","payload":{"x":10,"y":-4}}`, Pan{X: 10, Y: -4}, nil},
		{
			"selection",
			`{"kind":"set_selection","payload":{"region":{"unit":"%","x":5,"y":5,"width":50,"height":20}}}`,
			SetSelection{Region: entity.SelectionRegion{Unit: entity.UnitPercent, X: 5, Y: 5, Width: 50, Height: 20}},
			nil,
		},
		{"missing payload", `{"kind":"set_focal"}`, nil, ErrUnknownEvent},
		{"callbacks are not user events", `{"kind":"uploaded","payload":{"ticket":1}}`, nil, ErrUnknownEvent},
		{"unknown", `{"kind":"explode"}`, nil, ErrUnknownEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg EventMessage
			if err := json.Unmarshal([]byte(tt.msg), &msg); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := DecodeEvent(msg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DecodeEvent() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEvent() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
