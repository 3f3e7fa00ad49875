// Package pulse plays an optional soundtrack and measures its loudness so the
// particle field can breathe with the music.
package pulse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog/log"
)

const (
	ringSize        = 8192
	levelWindow     = 2048
	smoothingFactor = 0.6
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Meter smooths successive loudness readings.
type Meter struct {
	value float64
}

// Sample folds the current level of t into the meter and returns the result.
func (m *Meter) Sample(t *Tap) float64 {
	if t == nil {
		m.value *= smoothingFactor
		return m.value
	}
	m.value = smoothingFactor*m.value + (1-smoothingFactor)*rmsLevel(t.Snapshot(levelWindow))
	return m.value
}

func (m *Meter) Value() float64 { return m.value }

// Player owns the speaker and at most one playing soundtrack.
type Player struct {
	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *Tap
	meter    Meter
	duration time.Duration
	paused   bool
	initDone bool
	path     string
}

func NewPlayer() *Player {
	return &Player{}
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".mp3", ".flac":
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open soundtrack: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode soundtrack %s: %w", path, err)
	}
	return streamer, format, nil
}

// Open decodes path and starts playing it, replacing any current soundtrack.
func (p *Player) Open(path string) error {
	streamer, format, err := decodeFile(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	initDone, prevRate := p.initDone, p.format.SampleRate
	p.mu.Unlock()

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
	case prevRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("reinit speaker: %w", err)
		}
	default:
		speaker.Clear()
	}

	tap := NewTap(streamer, ringSize)
	ctrl := &beep.Ctrl{Streamer: tap}

	p.mu.Lock()
	if p.streamer != nil {
		_ = p.streamer.Close()
	}
	p.initDone = true
	p.streamer = streamer
	p.format = format
	p.tap = tap
	p.ctrl = ctrl
	p.paused = false
	p.path = path
	duration := format.SampleRate.D(streamer.Len())
	p.duration = duration
	p.mu.Unlock()

	log.Info().Str("path", path).Dur("duration", duration).Int("rate", int(format.SampleRate)).Msg("soundtrack loaded")

	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		p.finish(streamer)
	})))
	return nil
}

// finish runs on the speaker goroutine once a soundtrack has played out.
func (p *Player) finish(s beep.StreamSeekCloser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer != s {
		return
	}
	_ = s.Close()
	p.streamer = nil
	p.tap = nil
	p.ctrl = nil
	p.duration = 0
	log.Debug().Str("path", p.path).Msg("soundtrack finished")
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streamer != nil && !p.paused
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) TogglePause() {
	p.mu.Lock()
	ctrl := p.ctrl
	if ctrl == nil {
		p.mu.Unlock()
		return
	}
	p.paused = !p.paused
	paused := p.paused
	p.mu.Unlock()

	speaker.Lock()
	ctrl.Paused = paused
	speaker.Unlock()
}

// Level returns the smoothed loudness of what is currently playing, in [0, 1].
// It decays toward zero when nothing plays.
func (p *Player) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return p.meter.Sample(nil)
	}
	return p.meter.Sample(p.tap)
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	s, rate := p.streamer, p.format.SampleRate
	p.mu.Unlock()
	if s == nil {
		return 0
	}
	speaker.Lock()
	pos := s.Position()
	speaker.Unlock()
	return rate.D(pos)
}

// Close stops playback and releases the current soundtrack.
func (p *Player) Close() {
	p.mu.Lock()
	initDone := p.initDone
	s := p.streamer
	p.streamer = nil
	p.tap = nil
	p.ctrl = nil
	p.duration = 0
	p.mu.Unlock()

	if initDone {
		speaker.Clear()
	}
	if s != nil {
		_ = s.Close()
	}
}
