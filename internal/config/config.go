package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/iburimskiy/particle-field/internal/field"
	"github.com/joho/godotenv"
	gotoml "github.com/pelletier/go-toml/v2"
)

const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"
)

type Config struct {
	Backend  string         `toml:"backend"`
	Seed     int64          `toml:"seed"`
	Field    FieldConfig    `toml:"field"`
	Window   WindowConfig   `toml:"window"`
	Terminal TerminalConfig `toml:"terminal"`
	Pulse    PulseConfig    `toml:"pulse"`
	Log      LogConfig      `toml:"log"`
}

type FieldConfig struct {
	DotCount     int     `toml:"dot_count"`
	MaxSpeed     float64 `toml:"max_speed"`
	DotRadius    float64 `toml:"dot_radius"`
	Threshold    float64 `toml:"threshold"`
	PointerReach float64 `toml:"pointer_reach"`
	LinkWidth    float64 `toml:"link_width"`
	PointerWidth float64 `toml:"pointer_width"`
	HueSpeed     float64 `toml:"hue_speed"`
}

type WindowConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	Overlay    bool   `toml:"overlay"`
	ShowStatus bool   `toml:"show_status"`
}

type TerminalConfig struct {
	CellWidth       int `toml:"cell_width"`
	CellHeight      int `toml:"cell_height"`
	FrameIntervalMS int `toml:"frame_interval_ms"`
}

type PulseConfig struct {
	Soundtrack string  `toml:"soundtrack"`
	Gain       float64 `toml:"gain"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default() Config {
	p := field.DefaultParams()
	return Config{
		Backend: BackendWindow,
		Field: FieldConfig{
			DotCount:     p.DotCount,
			MaxSpeed:     p.MaxSpeed,
			DotRadius:    p.DotRadius,
			Threshold:    p.Threshold,
			PointerReach: p.PointerReach,
			LinkWidth:    p.LinkWidth,
			PointerWidth: p.PointerWidth,
		},
		Window: WindowConfig{
			Width:      1024,
			Height:     512,
			Title:      "Particle Field - Esc/Q: Quit, O: Soundtrack, H: Hue",
			ShowStatus: true,
		},
		Terminal: TerminalConfig{
			CellWidth:       8,
			CellHeight:      16,
			FrameIntervalMS: 16,
		},
		Pulse: PulseConfig{
			Gain: 0.5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Params converts the [field] table into renderer parameters.
func (c Config) Params() field.Params {
	p := field.DefaultParams()
	p.DotCount = c.Field.DotCount
	p.MaxSpeed = c.Field.MaxSpeed
	p.DotRadius = c.Field.DotRadius
	p.Threshold = c.Field.Threshold
	p.PointerReach = c.Field.PointerReach
	p.LinkWidth = c.Field.LinkWidth
	p.PointerWidth = c.Field.PointerWidth
	p.Palette.HueSpeed = c.Field.HueSpeed
	return p
}

func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.Terminal.FrameIntervalMS) * time.Millisecond
}

// Load overlays path (when non-empty) and then the environment onto Default.
// A .env file in the working directory is read first if present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config env file: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeFile only overwrites keys present in the file; unknown keys are an error.
func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v, ok := lookupEnv("PARTICLES_BACKEND"); ok {
		cfg.Backend = v
	}
	if v, ok := lookupEnv("PARTICLES_SOUNDTRACK"); ok {
		cfg.Pulse.Soundtrack = v
	}
	if v, ok := lookupEnv("PARTICLES_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if err := envInt("PARTICLES_DOT_COUNT", &cfg.Field.DotCount); err != nil {
		return err
	}
	if err := envInt64("PARTICLES_SEED", &cfg.Seed); err != nil {
		return err
	}
	if err := envFloat("PARTICLES_THRESHOLD", &cfg.Field.Threshold); err != nil {
		return err
	}
	if err := envFloat("PARTICLES_HUE_SPEED", &cfg.Field.HueSpeed); err != nil {
		return err
	}
	if v, ok := lookupEnv("PARTICLES_OVERLAY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PARTICLES_OVERLAY: %w", err)
		}
		cfg.Window.Overlay = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envInt(key string, dst *int) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v, ok := lookupEnv(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendWindow, BackendTerminal:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Field.DotCount <= 0 {
		return fmt.Errorf("field.dot_count must be positive")
	}
	if c.Field.Threshold <= 0 {
		return fmt.Errorf("field.threshold must be positive")
	}
	if c.Field.MaxSpeed < 0 || c.Field.PointerReach < 0 || c.Field.DotRadius < 0 {
		return fmt.Errorf("field speeds and distances must not be negative")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return fmt.Errorf("terminal cell size must be positive")
	}
	if c.Terminal.FrameIntervalMS <= 0 {
		return fmt.Errorf("terminal.frame_interval_ms must be positive")
	}
	if c.Pulse.Gain < 0 {
		return fmt.Errorf("pulse.gain must not be negative")
	}
	return nil
}

// WriteTemplate writes the default configuration to path.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	data, err := gotoml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("config template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config write failed (%s): %w", path, err)
	}
	return nil
}
