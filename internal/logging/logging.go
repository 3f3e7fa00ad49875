package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "PARTICLES_LOG_LEVEL"
	EnvLogNoColor = "PARTICLES_LOG_NOCOLOR"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options select where runtime logs go. A nil Output means stderr.
type Options struct {
	Level   string
	Output  io.Writer
	NoColor bool
}

var configureOnce sync.Once

func ConfigureTests() {
	Configure(ProfileTest, Options{})
}

// Configure installs the global zerolog logger. Only the first call has any
// effect; env overrides win over opts.
func Configure(profile Profile, opts Options) {
	configureOnce.Do(func() {
		log.Logger = New(profile, opts)
	})
}

// New builds a console logger without touching global state.
func New(profile Profile, opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if profile == ProfileTest {
		level = zerolog.DebugLevel
	}
	if lvl, ok := parseLevel(opts.Level); ok {
		level = lvl
	}
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	noColor := opts.NoColor
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		noColor = v
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	writer := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	if profile == ProfileTest {
		writer.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Str("app", "particles").Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
