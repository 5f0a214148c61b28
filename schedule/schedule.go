// Package schedule coalesces bursts of change signals into debounced,
// single-flight renders.
package schedule

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/preview"
)

// ErrClosed is returned by Signal and Flush after Close.
var ErrClosed = errors.New("scheduler closed")

// State is the scheduler's position in its render cycle.
type State int

// Scheduler states.
const (
	Idle State = iota
	Pending
	Rendering
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Rendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Timer is a cancellable pending call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWindow sets the debounce window. Non-positive values keep the default.
func WithWindow(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithAfterFunc replaces the timer factory.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// WithLogger sets the logger for render failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// Scheduler runs render at most once per settling period. A signal
// (re)starts the debounce window; the superseded timer is stopped and its
// callback, if already running, is discarded by sequence number. A signal
// that arrives while a render executes queues exactly one follow-up render,
// which starts as soon as the current one returns. Renders never overlap.
type Scheduler struct {
	render    func() error
	window    time.Duration
	afterFunc AfterFunc
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	timer   Timer
	seq     uint64
	rerun   bool
	closed  bool
	renders int
}

// New creates a Scheduler that calls render.
func New(render func() error, opts ...Option) *Scheduler {
	s := &Scheduler{
		render:    render,
		window:    preview.DefaultDebounce,
		afterFunc: stdAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Window returns the debounce window.
func (s *Scheduler) Window() time.Duration {
	return s.window
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Renders returns the number of completed renders.
func (s *Scheduler) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Signal reports a document change.
func (s *Scheduler) Signal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.state == Rendering {
		s.rerun = true
		return nil
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.afterFunc(s.window, func() { s.fire(seq) })
	s.state = Pending
	return nil
}

// Flush renders immediately, cancelling a pending window. If a render is
// already executing, Flush queues the follow-up render and returns.
func (s *Scheduler) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state == Rendering {
		s.rerun = true
		s.mu.Unlock()
		return nil
	}
	s.cancelLocked()
	s.state = Rendering
	s.mu.Unlock()

	return s.run()
}

// Close cancels any pending render and rejects further signals. A render
// already executing runs to completion without a follow-up.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.rerun = false
	s.cancelLocked()
	if s.state == Pending {
		s.state = Idle
	}
	return nil
}

func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.seq++
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.seq || s.state != Pending {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.state = Rendering
	s.mu.Unlock()

	_ = s.run()
}

// run renders until no follow-up is queued and returns the last error.
func (s *Scheduler) run() error {
	for {
		err := s.render()
		if err != nil {
			s.logger.Error("render failed", "error", err)
		}

		s.mu.Lock()
		s.renders++
		if s.rerun && !s.closed {
			s.rerun = false
			s.mu.Unlock()
			continue
		}
		s.rerun = false
		s.state = Idle
		s.mu.Unlock()
		return err
	}
}
