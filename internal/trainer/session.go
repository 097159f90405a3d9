package trainer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastrand"

	"percept/internal/dataset/model"
	"percept/internal/learner"
	"percept/internal/scaler"
)

var (
	ErrNotRunning = fmt.Errorf("trainer: session is not running")
	ErrNotIdle    = fmt.Errorf("trainer: session is not idle")
)

// ProvideFn is the contract for returning a Session instance over a point set.
type ProvideFn func(points []model.Point, opts ...Option) (*Session, error)

type Option func(*Session)

func WithLearningRate(eta float64) Option {
	return func(s *Session) {
		s.opts.learningRate = eta
	}
}

func WithMaxEpochs(n int) Option {
	return func(s *Session) {
		s.opts.maxEpochs = n
	}
}

func WithSeed(seed uint32) Option {
	return func(s *Session) {
		s.opts.seed = seed
	}
}

func WithInitWeights(w learner.Weights) Option {
	return func(s *Session) {
		s.opts.initWeights = w
	}
}

type options struct {
	learningRate float64
	maxEpochs    int
	seed         uint32
	initWeights  learner.Weights
}

var defaultOptions = options{learningRate: 0.5, maxEpochs: 50}

type normPoint struct {
	x, y  float64
	label model.Category
}

// Session orchestrates epochs of mistake-driven learning over one point set.
// It owns the weights and the append-only step history. All mutation happens
// inside one method invocation at a time, the driver pulls steps via Next.
type Session struct {
	id   uuid.UUID
	opts options

	points     []model.Point
	normalized []normPoint
	stats      scaler.Stats

	rng     fastrand.RNG
	status  Status
	weights learner.Weights
	epoch   int
	visit   int
	perm    []int
	history []StepRecord
}

// New validates the configuration, fits the normalization statistics over
// the full point set and returns an idle session. Invalid configuration
// fails here, before any step can execute.
func New(points []model.Point, opts ...Option) (*Session, error) {
	s := &Session{
		id:   uuid.New(),
		opts: defaultOptions,
	}
	for _, f := range opts {
		f(s)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("trainer: point set is empty")
	}
	if s.opts.learningRate <= 0 {
		return nil, fmt.Errorf("trainer: learning rate must be positive, got %f", s.opts.learningRate)
	}
	if s.opts.maxEpochs <= 0 {
		return nil, fmt.Errorf("trainer: max epochs must be positive, got %d", s.opts.maxEpochs)
	}
	for i := range points {
		if points[i].Vec.Dimensions() != 2 {
			return nil, fmt.Errorf("trainer: point %d is not 2-dimensional", i)
		}
		if !points[i].Label.Valid() {
			return nil, fmt.Errorf("trainer: point %d carries unknown label %d", i, points[i].Label)
		}
	}

	s.points = make([]model.Point, len(points))
	copy(s.points, points)

	stats, err := scaler.Fit(s.points)
	if err != nil {
		return nil, fmt.Errorf("trainer: fit stats: %w", err)
	}
	s.stats = stats

	s.normalized = make([]normPoint, len(s.points))
	for i := range s.points {
		x, y := stats.Normalize(s.points[i])
		s.normalized[i] = normPoint{x: x, y: y, label: s.points[i].Label}
	}

	s.weights = s.opts.initWeights
	s.status = StatusIdle
	return s, nil
}

// RunID identifies one training run; it changes on every reset so stale
// observers can tell runs apart.
func (s *Session) RunID() uuid.UUID {
	return s.id
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) Stats() scaler.Stats {
	return s.stats
}

func (s *Session) Epoch() int {
	return s.epoch
}

// Weights returns the current weights in normalized space.
func (s *Session) Weights() learner.Weights {
	return s.weights
}

// RawWeights returns the current weights mapped back to raw coordinate space.
func (s *Session) RawWeights() learner.Weights {
	return s.stats.Denormalize(s.weights)
}

// Points returns the raw point set the session was built over.
func (s *Session) Points() []model.Point {
	return s.points
}

// History returns the append-only step records produced so far.
func (s *Session) History() []StepRecord {
	return s.history
}

// Start transitions an idle session to running and prepares the first
// epoch's visitation order.
func (s *Session) Start() error {
	if s.status != StatusIdle {
		return fmt.Errorf("%w: status %s", ErrNotIdle, s.status)
	}
	seed := s.opts.seed
	if seed == 0 {
		seed = uint32(time.Now().UnixNano())
	}
	s.rng.Seed(seed)

	s.perm = make([]int, len(s.points))
	for i := range s.perm {
		s.perm[i] = i
	}
	s.shuffle()

	s.epoch = 1
	s.visit = 0
	s.status = StatusRunning
	return nil
}

// Next advances the session by exactly one point-step and appends its
// record to the history. At the end of an epoch it recomputes the
// misclassification count over the entire point set and either converges,
// exhausts the epoch limit or starts a fresh permutation.
func (s *Session) Next() (StepRecord, error) {
	if s.status != StatusRunning {
		return StepRecord{}, fmt.Errorf("%w: status %s", ErrNotRunning, s.status)
	}

	idx := s.perm[s.visit]
	np := s.normalized[idx]
	w, changed := learner.Step(s.weights, np.x, np.y, np.label, s.opts.learningRate)
	s.weights = w
	s.visit++

	rec := StepRecord{
		Epoch:      s.epoch,
		PointIndex: idx,
		Weights:    w,
		RawWeights: s.stats.Denormalize(w),
		Updated:    changed,
	}

	if s.visit == len(s.perm) {
		errCount := s.errorCount(w)
		rec.EpochDone = true
		rec.EpochErrorCount = errCount
		switch {
		case errCount == 0:
			s.status = StatusConverged
		case s.epoch >= s.opts.maxEpochs:
			s.status = StatusExhaustedEpochs
		default:
			s.epoch++
			s.visit = 0
			s.shuffle()
		}
	}

	s.history = append(s.history, rec)
	return rec, nil
}

// Stop cancels a running session between two point-steps. The history stays
// the authoritative record up to this point, no further steps are produced.
func (s *Session) Stop() {
	if s.status == StatusRunning {
		s.status = StatusStoppedEarly
	}
}

// Reset discards the history, re-initializes the weights and returns the
// session to idle under a new run identity.
func (s *Session) Reset(seed uint32) {
	s.id = uuid.New()
	s.opts.seed = seed
	s.weights = s.opts.initWeights
	s.epoch = 0
	s.visit = 0
	s.perm = nil
	s.history = nil
	s.status = StatusIdle
}

// ErrorCount returns the misclassification count of the current weights
// over the entire point set.
func (s *Session) ErrorCount() int {
	return s.errorCount(s.weights)
}

func (s *Session) errorCount(w learner.Weights) int {
	var n int
	for i := range s.normalized {
		if w.Classify(s.normalized[i].x, s.normalized[i].y) != s.normalized[i].label {
			n++
		}
	}
	return n
}

// shuffle produces a fresh uniform permutation for the coming epoch.
// Presenting classes in blocks makes the learner oscillate, so this is a
// correctness requirement, not cosmetics.
func (s *Session) shuffle() {
	for i := len(s.perm) - 1; i > 0; i-- {
		j := int(s.rng.Uint32n(uint32(i + 1)))
		s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
	}
}
