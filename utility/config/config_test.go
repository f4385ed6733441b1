package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/desain-gratis/imageadjust/types/entity"
	"github.com/desain-gratis/imageadjust/usecase/screen"
)

func Test_Load_defaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Screens, screen.DefaultConfig()) {
		t.Errorf("screens = %+v, want %+v", got.Screens, screen.DefaultConfig())
	}
	if got.Server.Address != "localhost:9090" || got.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("server = %+v", got.Server)
	}
	if got.Export.JPEGQuality != 92 || got.Export.Options().Format != "" || got.Log.Level != "info" {
		t.Errorf("export/log = %+v %+v", got.Export, got.Log)
	}
	if len(got.Upload.AllowedTypes) != 4 {
		t.Errorf("allowed types = %v", got.Upload.AllowedTypes)
	}
}

func Test_Load_fileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  address: 0.0.0.0:8080
  shutdown_timeout: 10s
screens:
  avatar:
    circle_diameter: 200
export:
  jpeg_quality: 80
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(EnvConfig, path)
	t.Setenv("IMAGEADJUST_LOG_LEVEL", "debug")
	t.Setenv("IMAGEADJUST_EXPORT_FORMAT", "WebP")

	got, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Server.Address != "0.0.0.0:8080" || got.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("server = %+v", got.Server)
	}
	if got.Screens.Avatar.CircleDiameter != 200 || got.Screens.Avatar.Width != 300 {
		t.Errorf("avatar = %+v", got.Screens.Avatar)
	}
	if got.Export.JPEGQuality != 80 || got.Export.Options().Quality != 80 {
		t.Errorf("export = %+v", got.Export)
	}
	if got.Export.Options().Format != entity.FormatWebP {
		t.Errorf("export format = %v, want env override", got.Export.Options().Format)
	}
	if got.Log.Level != "debug" {
		t.Errorf("log level = %v, want env override", got.Log.Level)
	}
}

func Test_Load_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("Load() should fail on a missing file")
	}
}
