package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"percept/internal/trainer"
)

var ErrAlreadyRunning = fmt.Errorf("playback: scheduler is already running")

// OnStepFn observes one emitted step record.
type OnStepFn func(trainer.StepRecord)

// OnStatusFn observes session status transitions.
type OnStatusFn func(trainer.Status)

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.opts.interval = d
	}
}

func WithUpdateInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.opts.updateInterval = d
	}
}

func WithOnStep(fn OnStepFn) Option {
	return func(s *Scheduler) {
		s.opts.onStep = fn
	}
}

func WithOnStatus(fn OnStatusFn) Option {
	return func(s *Scheduler) {
		s.opts.onStatus = fn
	}
}

type options struct {
	interval       time.Duration
	updateInterval time.Duration
	onStep         OnStepFn
	onStatus       OnStatusFn
}

var defaultOptions = options{interval: 300 * time.Millisecond, updateInterval: 600 * time.Millisecond}

// Scheduler decouples algorithmic stepping from real-time pacing: it owns
// the single timer that advances its session one point-step at a time.
// One scheduler drives one session, it is the session's only driver while
// running. Callbacks run on the scheduler goroutine; they must not call
// Stop, cancel the run context instead.
type Scheduler struct {
	mtx  sync.Mutex
	opts options

	session *trainer.Session

	running bool
	stopped bool
	cancel  func()
	doneCh  chan struct{}
}

func New(session *trainer.Session, opts ...Option) (*Scheduler, error) {
	if session == nil {
		return nil, fmt.Errorf("playback: session instance is not defined")
	}
	s := &Scheduler{
		session: session,
		opts:    defaultOptions,
	}
	for _, f := range opts {
		f(s)
	}
	if s.opts.interval <= 0 {
		return nil, fmt.Errorf("playback: step interval must be positive, got %s", s.opts.interval)
	}
	if s.opts.updateInterval <= 0 {
		s.opts.updateInterval = s.opts.interval
	}
	return s, nil
}

// Done is closed when the run loop has finished and no further callbacks
// will be invoked.
func (s *Scheduler) Done() <-chan struct{} {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.doneCh
}

// Run starts the session and the pacing loop. Calling Run while the loop is
// live fails with ErrAlreadyRunning rather than racing a second driver over
// the same session.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mtx.Lock()
	if s.running {
		s.mtx.Unlock()
		return ErrAlreadyRunning
	}
	if err := s.session.Start(); err != nil {
		s.mtx.Unlock()
		return fmt.Errorf("playback: session start: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.stopped = false
	s.cancel = cancel
	s.doneCh = make(chan struct{})
	doneCh := s.doneCh
	s.mtx.Unlock()

	s.emitStatus(trainer.StatusRunning)
	go s.loop(ctx, doneCh)
	return nil
}

// Stop cancels the run. Idempotent; once it returns, no already-scheduled
// but not-yet-fired step will invoke the step observer.
func (s *Scheduler) Stop() {
	s.mtx.Lock()
	if s.stopped {
		s.mtx.Unlock()
		return
	}
	s.stopped = true
	s.session.Stop()
	cancel := s.cancel
	s.mtx.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Scheduler) loop(ctx context.Context, doneCh chan struct{}) {
	defer func() {
		s.mtx.Lock()
		s.running = false
		status := s.session.Status()
		s.mtx.Unlock()
		s.emitStatus(status)
		close(doneCh)
	}()

	timer := time.NewTimer(s.opts.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return
		case <-timer.C:
		}

		rec, ok := s.step(ctx)
		if !ok {
			return
		}

		delay := s.opts.interval
		if rec.Updated {
			delay = s.opts.updateInterval
		}
		timer.Reset(delay)
	}
}

// step performs one session step under the scheduler mutex. The stopped
// check and the emission are serialized with Stop, so a timer that fired
// concurrently with a cancellation can never reach the observer.
func (s *Scheduler) step(ctx context.Context) (trainer.StepRecord, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped || ctx.Err() != nil {
		return trainer.StepRecord{}, false
	}
	rec, err := s.session.Next()
	if err != nil {
		// the session reached a terminal state on its own
		return trainer.StepRecord{}, false
	}
	if s.opts.onStep != nil {
		s.opts.onStep(rec)
	}
	if s.session.Status() != trainer.StatusRunning {
		return rec, false
	}
	return rec, true
}

func (s *Scheduler) markStopped() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.stopped {
		s.stopped = true
		s.session.Stop()
	}
}

func (s *Scheduler) emitStatus(status trainer.Status) {
	if s.opts.onStatus != nil {
		s.opts.onStatus(status)
	}
}
