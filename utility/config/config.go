package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/desain-gratis/imageadjust/delivery/upload"
	"github.com/desain-gratis/imageadjust/lib/imageproc"
	"github.com/desain-gratis/imageadjust/types/entity"
	"github.com/desain-gratis/imageadjust/usecase/screen"
)

const (
	EnvPrefix  = "IMAGEADJUST"
	EnvConfig  = "IMAGEADJUST_CONFIG"
	configType = "yaml"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Export  ExportConfig  `mapstructure:"export"`
	Screens screen.Config `mapstructure:"screens"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type UploadConfig struct {
	MaxBytes     int64    `mapstructure:"max_bytes"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type ExportConfig struct {
	JPEGQuality   int    `mapstructure:"jpeg_quality"`
	PlaceholderPx int    `mapstructure:"placeholder_px"`
	Format        string `mapstructure:"format"` // png, jpeg or webp; empty keeps each screen's own
}

func (e ExportConfig) Options() imageproc.ExportOptions {
	return imageproc.ExportOptions{
		Quality:       e.JPEGQuality,
		PlaceholderPx: e.PlaceholderPx,
		Format:        entity.Format(strings.ToLower(e.Format)),
	}
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "localhost:9090")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("upload.max_bytes", upload.DefaultMaxBytes)
	v.SetDefault("upload.allowed_types", upload.DefaultAllowedTypes)

	v.SetDefault("export.jpeg_quality", imageproc.DefaultJPEGQuality)
	v.SetDefault("export.placeholder_px", imageproc.DefaultPlaceholderPx)
	v.SetDefault("export.format", "")

	s := screen.DefaultConfig()
	v.SetDefault("screens.zoom_pan_pinch.frame_width", s.ZoomPanPinch.FrameWidth)
	v.SetDefault("screens.zoom_pan_pinch.frame_height", s.ZoomPanPinch.FrameHeight)
	v.SetDefault("screens.zoom_pan_pinch.min_scale", s.ZoomPanPinch.MinScale)
	v.SetDefault("screens.zoom_pan_pinch.max_scale", s.ZoomPanPinch.MaxScale)
	v.SetDefault("screens.zoom_pan_pinch.step", s.ZoomPanPinch.Step)

	v.SetDefault("screens.cropper.aspect_x", s.Cropper.AspectX)
	v.SetDefault("screens.cropper.aspect_y", s.Cropper.AspectY)
	v.SetDefault("screens.cropper.auto_crop_area", s.Cropper.AutoCropArea)
	v.SetDefault("screens.cropper.max_zoom", s.Cropper.MaxZoom)
	v.SetDefault("screens.cropper.zoom_step", s.Cropper.ZoomStep)

	v.SetDefault("screens.avatar.width", s.Avatar.Width)
	v.SetDefault("screens.avatar.height", s.Avatar.Height)
	v.SetDefault("screens.avatar.circle_diameter", s.Avatar.CircleDiameter)
	v.SetDefault("screens.avatar.min_scale", s.Avatar.MinScale)
	v.SetDefault("screens.avatar.max_scale", s.Avatar.MaxScale)
	v.SetDefault("screens.avatar.step", s.Avatar.Step)

	v.SetDefault("screens.medium_zoom.aspect_x", s.MediumZoom.AspectX)
	v.SetDefault("screens.medium_zoom.aspect_y", s.MediumZoom.AspectY)
	v.SetDefault("screens.medium_zoom.min_scale", s.MediumZoom.MinScale)
	v.SetDefault("screens.medium_zoom.max_scale", s.MediumZoom.MaxScale)
	v.SetDefault("screens.medium_zoom.step", s.MediumZoom.Step)

	v.SetDefault("log.level", "info")
}

// Load reads the yaml file at cfgFile (or $IMAGEADJUST_CONFIG when empty) on top of the
// defaults. Every key can be overridden from the environment, eg. IMAGEADJUST_SERVER_ADDRESS.
// Without a file only the defaults and the environment apply.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = os.Getenv(EnvConfig)
	}
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err != nil {
			return Config{}, fmt.Errorf("%w: failed to open config %v", err, cfgFile)
		}
		defer f.Close()

		v.SetConfigType(configType)
		if err := v.ReadConfig(f); err != nil {
			return Config{}, fmt.Errorf("%w: failed to read config %v", err, cfgFile)
		}
		log.Info().Msgf("reading config: %v", cfgFile)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: failed to unmarshal config", err)
	}
	return c, nil
}
