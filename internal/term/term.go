// Package term hosts the particle field in a terminal using tcell.
package term

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
	"github.com/iburimskiy/particle-field/internal/loop"
	"github.com/rs/zerolog/log"
)

// Soundtrack is the loudness source for the field's boost.
type Soundtrack interface {
	Level() float64
	TogglePause()
}

type Host struct {
	screen  tcell.Screen
	field   *field.Field
	surface *cellSurface
	cfg     config.Config
	track   Soundtrack

	hueSpeed float64

	mu   sync.Mutex
	loop *loop.Loop
}

// Open initialises the real terminal and seeds a field covering it.
func Open(cfg config.Config, rng *rand.Rand, track Soundtrack) (*Host, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	cols, rows := screen.Size()
	f := field.New(cfg.Params(),
		float64(cols*cfg.Terminal.CellWidth), float64(rows*cfg.Terminal.CellHeight), rng)
	return New(screen, cfg, f, track), nil
}

// New wraps an initialised screen. The field is resized to the screen.
func New(screen tcell.Screen, cfg config.Config, f *field.Field, track Soundtrack) *Host {
	hue := cfg.Field.HueSpeed
	if hue == 0 {
		hue = 0.001
	}
	h := &Host{
		screen:   screen,
		field:    f,
		surface:  newCellSurface(0, 0, float64(cfg.Terminal.CellWidth), float64(cfg.Terminal.CellHeight)),
		cfg:      cfg,
		track:    track,
		hueSpeed: hue,
	}
	h.resize(screen.Size())
	return h
}

// Run animates until ctx is cancelled or the user quits, then restores the
// terminal.
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse(tcell.MouseMotionEvents)
	h.screen.HideCursor()

	l := loop.Start(ctx, h.cfg.FrameInterval(), h.frame)
	h.mu.Lock()
	h.loop = l
	h.mu.Unlock()

	polled := make(chan struct{})
	go func() {
		defer close(polled)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			if !l.Post(func() { h.handle(ev) }) {
				return
			}
		}
	}()

	cols, rows := h.screen.Size()
	log.Info().Int("cols", cols).Int("rows", rows).Msg("terminal starting")

	<-l.Done()
	h.screen.Fini()
	<-polled
	log.Info().Uint64("frames", l.Frames()).Msg("terminal stopped")
	return nil
}

// Stop ends Run. It is a no-op before Run starts.
func (h *Host) Stop() {
	h.mu.Lock()
	l := h.loop
	h.mu.Unlock()
	if l != nil {
		l.Stop()
	}
}

func (h *Host) frame() {
	if h.track != nil {
		h.field.SetBoost(h.track.Level() * h.cfg.Pulse.Gain)
	}
	h.field.Frame(h.surface)
	h.surface.flush(h.screen)
}

func (h *Host) resize(cols, rows int) {
	h.surface.resize(cols, rows)
	h.field.Resize(h.surface.extent())
	h.screen.Sync()
}

func (h *Host) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.resize(ev.Size())
	case *tcell.EventMouse:
		x, y := ev.Position()
		h.field.SetPointer((float64(x)+0.5)*h.surface.cellW, (float64(y)+0.5)*h.surface.cellH)
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			h.Stop()
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				h.Stop()
			case 'h', 'H':
				if h.field.HueSpeed() != 0 {
					h.field.SetHueSpeed(0)
				} else {
					h.field.SetHueSpeed(h.hueSpeed)
				}
			case ' ':
				if h.track != nil {
					h.track.TogglePause()
				}
			}
		}
	}
}
