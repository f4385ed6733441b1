package screen

type Config struct {
	ZoomPanPinch ZoomPanPinchConfig `mapstructure:"zoom_pan_pinch"`
	Cropper      CropperConfig      `mapstructure:"cropper"`
	Avatar       AvatarConfig       `mapstructure:"avatar"`
	MediumZoom   MediumZoomConfig   `mapstructure:"medium_zoom"`
}

func DefaultConfig() Config {
	return Config{
		ZoomPanPinch: ZoomPanPinchConfig{
			FrameWidth:  600,
			FrameHeight: 400,
			MinScale:    1,
			MaxScale:    8,
			Step:        0.5,
		},
		Cropper: CropperConfig{
			AspectX:      16,
			AspectY:      9,
			AutoCropArea: 0.8,
			MaxZoom:      1,
			ZoomStep:     0.1,
		},
		Avatar: AvatarConfig{
			Width:          300,
			Height:         300,
			CircleDiameter: 150,
			MinScale:       1,
			MaxScale:       3,
			Step:           0.1,
		},
		MediumZoom: MediumZoomConfig{
			AspectX:  16,
			AspectY:  9,
			MinScale: 0.1,
			MaxScale: 3,
			Step:     0.1,
		},
	}
}
