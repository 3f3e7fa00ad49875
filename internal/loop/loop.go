// Package loop runs a frame callback at a fixed cadence on a single
// goroutine, with a queue for event handlers that must not race the frame.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is roughly one 60 Hz display refresh.
const DefaultInterval = 16 * time.Millisecond

const taskBuffer = 64

type Loop struct {
	interval time.Duration
	frame    func()
	tasks    chan func()
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	frames   atomic.Uint64
}

// Start launches the loop. Frames and posted tasks run one at a time on the
// loop goroutine until Stop is called or ctx is cancelled.
func Start(ctx context.Context, interval time.Duration, frame func()) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{
		interval: interval,
		frame:    frame,
		tasks:    make(chan func(), taskBuffer),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go l.run(ctx)
	return l
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.frame()
			l.frames.Add(1)
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is
// full and returns false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop cancels the loop. It is safe to call more than once and does not wait;
// use Done for that.
func (l *Loop) Stop() {
	l.stopOnce.Do(l.cancel)
}

// Done is closed once the loop goroutine has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Frames is the number of frame callbacks that have completed.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}
