package game

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
)

type fakeTrack struct {
	opened  []string
	openErr error
	paused  bool
	playing bool
	level   float64
}

func (f *fakeTrack) Open(path string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, path)
	f.playing = true
	return nil
}
func (f *fakeTrack) TogglePause() { f.paused = !f.paused; f.playing = !f.paused }
func (f *fakeTrack) Level() float64 { return f.level }
func (f *fakeTrack) Playing() bool { return f.playing }
func (f *fakeTrack) Paused() bool { return f.paused }
func (f *fakeTrack) Position() time.Duration { return 65 * time.Second }
func (f *fakeTrack) Duration() time.Duration { return 3 * time.Minute }
func (f *fakeTrack) Close() {}

func newTestGame(t *testing.T, track Soundtrack) *Game {
	t.Helper()
	cfg := config.Default()
	f := field.New(cfg.Params(), float64(cfg.Window.Width), float64(cfg.Window.Height), rand.New(rand.NewSource(1)))
	return New(cfg, f, track)
}

func TestStopTerminatesUpdate(t *testing.T) {
	g := newTestGame(t, nil)
	g.Stop()
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("expected termination, got %v", err)
	}
}

func TestLayoutResizesField(t *testing.T) {
	g := newTestGame(t, nil)
	before := append([]field.Dot(nil), g.field.Dots()...)

	for i := 0; i < 2; i++ {
		w, h := g.Layout(640, 480)
		if w != 640 || h != 480 {
			t.Fatalf("unexpected layout %dx%d", w, h)
		}
	}
	if w, h := g.field.Bounds(); w != 640 || h != 480 {
		t.Fatalf("field not resized: %vx%v", w, h)
	}
	for i, d := range g.field.Dots() {
		if d != before[i] {
			t.Fatalf("dot %d moved on resize", i)
		}
	}

	if w, h := g.Layout(0, 0); w != 640 || h != 480 {
		t.Fatalf("minimised window should keep last size, got %dx%d", w, h)
	}
}

func TestTrackPointer(t *testing.T) {
	g := newTestGame(t, nil)
	g.trackPointer(10, 20, true)
	if x, y, ok := g.field.Pointer().Position(); !ok || x != 10 || y != 20 {
		t.Fatalf("expected pointer at 10,20 got %v,%v,%v", x, y, ok)
	}

	g.trackPointer(-1, 20, true)
	if _, _, ok := g.field.Pointer().Position(); ok {
		t.Fatalf("pointer outside window should clear")
	}

	g.trackPointer(10, 20, false)
	if _, _, ok := g.field.Pointer().Position(); ok {
		t.Fatalf("unfocused window should clear pointer")
	}
}

func TestToggleHue(t *testing.T) {
	g := newTestGame(t, nil)
	if g.field.HueSpeed() != 0 {
		t.Fatalf("expected fixed palette by default")
	}
	g.toggleHue()
	if g.field.HueSpeed() == 0 {
		t.Fatalf("expected hue cycling on")
	}
	g.toggleHue()
	if g.field.HueSpeed() != 0 {
		t.Fatalf("expected hue cycling off")
	}
}

func TestSoundtrackStatusAndPulse(t *testing.T) {
	track := &fakeTrack{level: 0.8}
	g := newTestGame(t, track)

	if s := g.statusLine(60); !strings.Contains(s, "O to open") || !strings.Contains(s, "100 dots") {
		t.Fatalf("unexpected idle status %q", s)
	}

	if err := g.OpenSoundtrack("song.mp3"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if s := g.statusLine(60); !strings.Contains(s, "01:05 / 03:00") {
		t.Fatalf("unexpected playing status %q", s)
	}

	g.togglePause()
	if s := g.statusLine(60); !strings.Contains(s, "paused") {
		t.Fatalf("unexpected paused status %q", s)
	}

	track.openErr = errors.New("bad file")
	err := g.OpenSoundtrack("broken.wav")
	if err == nil {
		t.Fatalf("expected open error")
	}
	g.fail(err)
	if s := g.statusLine(60); !strings.Contains(s, "Error: bad file") {
		t.Fatalf("expected error in status, got %q", s)
	}

	g.pulse()
}

func TestNilSoundtrack(t *testing.T) {
	g := newTestGame(t, nil)
	g.togglePause()
	g.pulse()
	if err := g.OpenSoundtrack("x.wav"); err != nil {
		t.Fatalf("expected no-op without a soundtrack, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(125 * time.Second); got != "02:05" {
		t.Fatalf("formatDuration = %q", got)
	}
	if got := formatDuration(-time.Second); got != "00:00" {
		t.Fatalf("negative duration = %q", got)
	}
}
