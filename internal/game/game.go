// Package game hosts the particle field in an ebiten window.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"
)

// Soundtrack is the audio source that drives the field's boost.
type Soundtrack interface {
	Open(path string) error
	TogglePause()
	Level() float64
	Playing() bool
	Paused() bool
	Position() time.Duration
	Duration() time.Duration
	Close()
}

type Game struct {
	cfg     config.WindowConfig
	gain    float64
	field   *field.Field
	surface screenSurface
	track   Soundtrack

	width, height int
	hueSpeed      float64

	stopped atomic.Bool
	lastErr error
}

// New wraps f for ebiten. track may be nil to run without audio.
func New(cfg config.Config, f *field.Field, track Soundtrack) *Game {
	hue := cfg.Field.HueSpeed
	if hue == 0 {
		hue = 0.001
	}
	return &Game{
		cfg:      cfg.Window,
		gain:     cfg.Pulse.Gain,
		field:    f,
		surface:  screenSurface{transparent: cfg.Window.Overlay},
		track:    track,
		width:    cfg.Window.Width,
		height:   cfg.Window.Height,
		hueSpeed: hue,
	}
}

// Stop makes the next Update end the game.
func (g *Game) Stop() {
	g.stopped.Store(true)
}

func (g *Game) Update() error {
	if g.stopped.Load() {
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	g.trackPointer(x, y, ebiten.IsFocused())

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.toggleHue()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		if err := g.openSoundtrackDialog(); err != nil {
			g.fail(err)
		}
	}

	g.pulse()
	return nil
}

// Draw runs one field frame per display refresh.
func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.screen = screen
	g.field.Frame(&g.surface)

	if g.cfg.ShowStatus && !g.cfg.Overlay {
		ebitenutil.DebugPrintAt(screen, g.statusLine(ebiten.ActualFPS()), 12, 12)
	}
}

// Layout follows the window size so the field always covers it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.width, g.height = outsideWidth, outsideHeight
		g.field.Resize(float64(outsideWidth), float64(outsideHeight))
	}
	return g.width, g.height
}

func (g *Game) trackPointer(x, y int, focused bool) {
	if !focused || x < 0 || y < 0 || x >= g.width || y >= g.height {
		g.field.ClearPointer()
		return
	}
	g.field.SetPointer(float64(x), float64(y))
}

func (g *Game) togglePause() {
	if g.track == nil {
		return
	}
	g.track.TogglePause()
}

func (g *Game) toggleHue() {
	if g.field.HueSpeed() != 0 {
		g.field.SetHueSpeed(0)
		return
	}
	g.field.SetHueSpeed(g.hueSpeed)
}

func (g *Game) pulse() {
	if g.track == nil {
		return
	}
	g.field.SetBoost(g.track.Level() * g.gain)
}

func (g *Game) fail(err error) {
	g.lastErr = err
	log.Error().Err(err).Msg("soundtrack")
}

func (g *Game) openSoundtrackDialog() error {
	if g.track == nil {
		return nil
	}
	filename, err := zenity.SelectFile(
		zenity.Title("Open Soundtrack"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.OpenSoundtrack(filename)
}

// OpenSoundtrack starts playing path. Failures leave the field animating.
func (g *Game) OpenSoundtrack(path string) error {
	if g.track == nil {
		return nil
	}
	if err := g.track.Open(path); err != nil {
		return err
	}
	g.lastErr = nil
	return nil
}

func (g *Game) statusLine(fps float64) string {
	status := fmt.Sprintf("%d dots  %.0f fps", len(g.field.Dots()), fps)
	switch {
	case g.track == nil:
	case g.track.Playing():
		status += fmt.Sprintf("  %s / %s", formatDuration(g.track.Position()), formatDuration(g.track.Duration()))
	case g.track.Paused():
		status += "  paused - Space to resume"
	default:
		status += "  O to open a soundtrack"
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

// Run opens the window and blocks until the game ends or ctx is cancelled.
func (g *Game) Run(ctx context.Context) error {
	ebiten.SetWindowTitle(g.cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)

	opts := &ebiten.RunGameOptions{}
	if g.cfg.Overlay {
		// Click-through backdrop covering the whole monitor.
		opts.ScreenTransparent = true
		ebiten.SetWindowDecorated(false)
		ebiten.SetWindowMousePassthrough(true)
		w, h := ebiten.Monitor().Size()
		ebiten.SetWindowSize(w, h)
		ebiten.SetWindowPosition(0, 0)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			g.Stop()
		case <-done:
		}
	}()

	log.Info().Int("width", g.cfg.Width).Int("height", g.cfg.Height).Bool("overlay", g.cfg.Overlay).Msg("window starting")
	if err := ebiten.RunGameWithOptions(g, opts); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
