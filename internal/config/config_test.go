package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "particles.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	p := cfg.Params()
	if p.DotCount != 100 || p.Threshold != 150 || p.PointerReach != 50 || p.DotRadius != 2 {
		t.Fatalf("unexpected params: %+v", p)
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Fatalf("unexpected frame interval %v", cfg.FrameInterval())
	}
}

func TestLoadOverlaysOnlyDefinedKeys(t *testing.T) {
	path := writeFile(t, `
backend = "terminal"

[field]
dot_count = 40
hue_speed = 0.002

[pulse]
soundtrack = "ambient.mp3"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendTerminal {
		t.Fatalf("unexpected backend %q", cfg.Backend)
	}
	if cfg.Field.DotCount != 40 || cfg.Field.HueSpeed != 0.002 {
		t.Fatalf("unexpected field table: %+v", cfg.Field)
	}
	if cfg.Field.Threshold != 150 {
		t.Fatalf("undefined key should keep default, got %v", cfg.Field.Threshold)
	}
	if cfg.Pulse.Soundtrack != "ambient.mp3" || cfg.Pulse.Gain != 0.5 {
		t.Fatalf("unexpected pulse table: %+v", cfg.Pulse)
	}
	if cfg.Params().Palette.HueSpeed != 0.002 {
		t.Fatalf("hue speed not carried into params")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "[field]\ndot_cnt = 3\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "field.dot_cnt") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARTICLES_DOT_COUNT", "12")
	t.Setenv("PARTICLES_THRESHOLD", "90.5")
	t.Setenv("PARTICLES_SEED", "99")
	t.Setenv("PARTICLES_OVERLAY", "true")
	t.Setenv("PARTICLES_BACKEND", "terminal")

	path := writeFile(t, "[field]\ndot_count = 40\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Field.DotCount != 12 || cfg.Field.Threshold != 90.5 || cfg.Seed != 99 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if !cfg.Window.Overlay || cfg.Backend != BackendTerminal {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("PARTICLES_DOT_COUNT", "lots")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "PARTICLES_DOT_COUNT") {
		t.Fatalf("expected env parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "canvas" }},
		{"dot count", func(c *Config) { c.Field.DotCount = 0 }},
		{"threshold", func(c *Config) { c.Field.Threshold = 0 }},
		{"reach", func(c *Config) { c.Field.PointerReach = -1 }},
		{"window", func(c *Config) { c.Window.Height = 0 }},
		{"cell", func(c *Config) { c.Terminal.CellWidth = 0 }},
		{"interval", func(c *Config) { c.Terminal.FrameIntervalMS = 0 }},
		{"gain", func(c *Config) { c.Pulse.Gain = -0.1 }},
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "particles.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("template does not round trip:\n got %+v\nwant %+v", cfg, Default())
	}
}
