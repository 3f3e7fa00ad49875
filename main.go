package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
	"github.com/iburimskiy/particle-field/internal/game"
	"github.com/iburimskiy/particle-field/internal/logging"
	"github.com/iburimskiy/particle-field/internal/pulse"
	"github.com/iburimskiy/particle-field/internal/term"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	backend := flag.String("backend", "", "window|terminal (overrides config)")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	writeConfig := flag.String("write-config", "", "write a default config template to this path and exit")
	force := flag.Bool("force", false, "overwrite an existing template with -write-config")
	validate := flag.Bool("validate-config", false, "load and validate the config, then exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteTemplate(*writeConfig, *force); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("wrote config template to %s\n", *writeConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *validate {
		fmt.Println("config ok")
		return
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Str("backend", cfg.Backend).Msg("particle field failed")
		if cfg.Backend == config.BackendWindow {
			_ = zenity.Error(err.Error(), zenity.Title("Particle Field"))
		}
		closeLog()
		os.Exit(1)
	}
}

// setupLogging sends logs to the configured file, or to stderr for the window
// backend. The terminal backend owns stdout/stderr, so without a file its
// logs are dropped.
func setupLogging(cfg config.Config) (func(), error) {
	opts := logging.Options{Level: cfg.Log.Level}
	closer := func() {}
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		opts.Output = f
		opts.NoColor = true
		closer = func() { _ = f.Close() }
	case cfg.Backend == config.BackendTerminal:
		opts.Output = io.Discard
	}
	logging.Configure(logging.ProfileRuntime, opts)
	return closer, nil
}

func run(ctx context.Context, cfg config.Config) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	player := pulse.NewPlayer()
	defer player.Close()
	if cfg.Pulse.Soundtrack != "" {
		if err := player.Open(cfg.Pulse.Soundtrack); err != nil {
			log.Warn().Err(err).Str("path", cfg.Pulse.Soundtrack).Msg("soundtrack unavailable, animating without it")
		}
	}

	log.Info().Int64("seed", seed).Int("dots", cfg.Field.DotCount).Float64("threshold", cfg.Field.Threshold).Msg("field ready")

	switch cfg.Backend {
	case config.BackendTerminal:
		host, err := term.Open(cfg, rng, player)
		if err != nil {
			return err
		}
		return host.Run(ctx)
	default:
		f := field.New(cfg.Params(), float64(cfg.Window.Width), float64(cfg.Window.Height), rng)
		return game.New(cfg, f, player).Run(ctx)
	}
}
