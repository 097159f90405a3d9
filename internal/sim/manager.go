package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"percept/internal/dataset/model"
	"percept/internal/logging"
	"percept/internal/playback"
	"percept/internal/telemetry"
	"percept/internal/trainer"
)

// ProvideFn is the contract for returning a Manager instance.
type ProvideFn func(points []model.Point, shutdownCh chan<- error, opts ...Option) (Manager, error)

// Manager owns one live trainer/scheduler pair and fans training steps out
// to subscribed observers. Rendering layers are pure observers, they never
// drive the session themselves.
type Manager interface {
	// Run starts a training run over the current point set
	Run(context.Context) error
	// Stop cancels the live scheduler
	Stop()
	// Restart cancels the live scheduler, swaps in a new point set and
	// starts a fresh run
	Restart(ctx context.Context, points []model.Point) error
	// Session exposes the live session for read access
	Session() *trainer.Session
	// Done is closed when the current run's scheduler has finished
	Done() <-chan struct{}
}

type Option func(*manager)

func WithStepInterval(d time.Duration) Option {
	return func(m *manager) {
		m.opts.stepInterval = d
	}
}

func WithUpdateStepInterval(d time.Duration) Option {
	return func(m *manager) {
		m.opts.updateStepInterval = d
	}
}

func WithTrainerOptions(opts ...trainer.Option) Option {
	return func(m *manager) {
		m.opts.trainerOpts = append(m.opts.trainerOpts, opts...)
	}
}

// WithObserver subscribes a step observer. Observers must be registered
// before Run.
func WithObserver(fn playback.OnStepFn) Option {
	return func(m *manager) {
		m.observers = append(m.observers, fn)
	}
}

// WithStatusObserver subscribes a status observer.
func WithStatusObserver(fn playback.OnStatusFn) Option {
	return func(m *manager) {
		m.statusObservers = append(m.statusObservers, fn)
	}
}

type Options struct {
	stepInterval       time.Duration
	updateStepInterval time.Duration
	trainerOpts        []trainer.Option
}

// New returns a manager over the given point set.
func New(provideSessionFn trainer.ProvideFn, points []model.Point, shutdownCh chan<- error, opts ...Option) (*manager, error) {
	if provideSessionFn == nil {
		return nil, fmt.Errorf("sim: session provide function is not defined")
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("sim: point set is empty")
	}
	m := &manager{
		provideSessionFn: provideSessionFn,
		points:           points,
		shutdownCh:       shutdownCh,
		opts: Options{
			stepInterval:       300 * time.Millisecond,
			updateStepInterval: 600 * time.Millisecond,
		},
	}
	for _, f := range opts {
		f(m)
	}
	return m, nil
}

type manager struct {
	mtx sync.RWMutex

	opts             Options
	provideSessionFn trainer.ProvideFn

	points  []model.Point
	session *trainer.Session
	sched   *playback.Scheduler

	observers       []playback.OnStepFn
	statusObservers []playback.OnStatusFn

	shutdownCh chan<- error
	restarting bool
	closed     bool
}

func (m *manager) Session() *trainer.Session {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.session
}

func (m *manager) Done() <-chan struct{} {
	m.mtx.RLock()
	sched := m.sched
	m.mtx.RUnlock()
	if sched == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return sched.Done()
}

// Run builds a fresh session over the current point set and starts its
// scheduler. Exactly one scheduler is live per manager.
func (m *manager) Run(ctx context.Context) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.runLocked(ctx)
}

func (m *manager) runLocked(ctx context.Context) error {
	if m.closed {
		return fmt.Errorf("sim: manager is closed")
	}

	session, err := m.provideSessionFn(m.points, m.opts.trainerOpts...)
	if err != nil {
		return fmt.Errorf("sim: can not create session instance: %w", err)
	}

	sched, err := playback.New(
		session,
		playback.WithInterval(m.opts.stepInterval),
		playback.WithUpdateInterval(m.opts.updateStepInterval),
		playback.WithOnStep(m.emitStep(ctx, session)),
		playback.WithOnStatus(m.emitStatus),
	)
	if err != nil {
		return fmt.Errorf("sim: can not create scheduler instance: %w", err)
	}

	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("sim: scheduler run: %w", err)
	}
	telemetry.RecordSession(ctx)

	m.session = session
	m.sched = sched

	go m.await(sched)
	return nil
}

// Stop cancels the live scheduler; the session keeps its history as the
// authoritative record up to the cancellation point.
func (m *manager) Stop() {
	m.mtx.Lock()
	sched := m.sched
	m.closed = true
	m.mtx.Unlock()
	if sched != nil {
		sched.Stop()
	}
}

// Restart fully cancels any prior scheduler before resetting state, so two
// drivers never race on the same session.
func (m *manager) Restart(ctx context.Context, points []model.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("sim: point set is empty")
	}

	m.mtx.Lock()
	if m.closed {
		m.mtx.Unlock()
		return fmt.Errorf("sim: manager is closed")
	}
	m.restarting = true
	sched := m.sched
	m.mtx.Unlock()

	if sched != nil {
		sched.Stop()
		<-sched.Done()
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.points = points
	m.restarting = false
	return m.runLocked(ctx)
}

func (m *manager) await(sched *playback.Scheduler) {
	<-sched.Done()
	m.mtx.RLock()
	restarting := m.restarting
	m.mtx.RUnlock()
	if restarting || m.shutdownCh == nil {
		return
	}
	m.shutdownCh <- nil
}

func (m *manager) emitStep(ctx context.Context, session *trainer.Session) playback.OnStepFn {
	logger := logging.FromContext(ctx)
	return func(rec trainer.StepRecord) {
		telemetry.RecordStep(ctx, rec.Updated, rec.EpochDone)
		if rec.EpochDone {
			logger.Debugf(
				"run %s: epoch %d finished, %d misclassified",
				session.RunID(), rec.Epoch, rec.EpochErrorCount,
			)
		}
		for _, fn := range m.observers {
			fn(rec)
		}
	}
}

func (m *manager) emitStatus(status trainer.Status) {
	for _, fn := range m.statusObservers {
		fn(status)
	}
}
