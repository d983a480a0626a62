package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/raster"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[render]
width = 1024
max_iterations = 500
centre = "-0.75+0.1i"
mode = "palette"

[refine]
delay = "50ms"

[colours]
outer = "#00ff00"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Width != 1024 || cfg.Render.Height != 600 {
		t.Errorf("size = %dx%d, want 1024x600", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Render.Centre != cplx.New(-0.75, 0.1) {
		t.Errorf("centre = %v, want -0.75+0.1i", cfg.Render.Centre)
	}
	if cfg.Refine.Delay.Duration != 50*time.Millisecond {
		t.Errorf("delay = %v, want 50ms", cfg.Refine.Delay)
	}
	if mode, _ := cfg.Mode(); mode != raster.Palette {
		t.Errorf("mode = %v, want palette", mode)
	}
	p := cfg.Params()
	if p.MaxIterations != 500 || p.Zoom != 150 {
		t.Errorf("Params() = %+v", p)
	}
	s, err := cfg.Scheme()
	if err != nil {
		t.Fatal(err)
	}
	if o, e, _ := s.Hex(); o != "#00ff00" || e != "#0000ff" {
		t.Errorf("scheme = %s %s, want #00ff00 #0000ff", o, e)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[render", errors.ErrCodeInvalidFormat},
		{"unknown key", "[render]\nwidht = 3\n", errors.ErrCodeInvalidFormat},
		{"zero iterations", "[render]\nmax_iterations = 0\n", errors.ErrCodeInvalidParams},
		{"bad stride", "[refine]\nstart_stride = 12\n", errors.ErrCodeInvalidParams},
		{"bad colour", "[colours]\nouter = \"red\"\n", errors.ErrCodeInvalidFormat},
		{"bad mode", "[render]\nmode = \"rainbow\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidParams},
		{"unknown views backend", "[views]\nbackend = \"s3\"\n", errors.ErrCodeInvalidParams},
		{"small box size", "[dimension]\ninitial_size = 4\n", errors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}
