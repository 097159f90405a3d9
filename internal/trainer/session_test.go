package trainer

import (
	"errors"
	"reflect"
	"testing"

	"percept/internal/dataset/model"
	"percept/internal/learner"
	"percept/pkg/math/vector"
)

func labeled(coords [][3]float64) []model.Point {
	out := make([]model.Point, 0, len(coords))
	for _, c := range coords {
		out = append(out, model.NewPoint(vector.New([]float64{c[0], c[1]}), model.Category(c[2])))
	}
	return out
}

func separableSet() []model.Point {
	return labeled([][3]float64{
		{1, 1, 1},
		{2, 2, 1},
		{-1, -1, -1},
		{-2, -2, -1},
	})
}

func xorSet() []model.Point {
	return labeled([][3]float64{
		{0, 0, -1},
		{1, 1, -1},
		{1, 0, 1},
		{0, 1, 1},
	})
}

// drive pulls steps until the session leaves the running state.
func drive(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Start(); err != nil {
		t.Fatalf("session start error: %v", err)
	}
	for s.Status() == StatusRunning {
		if _, err := s.Next(); err != nil {
			t.Fatalf("session next error: %v", err)
		}
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		points []model.Point
		opts   []Option
	}{
		{name: "empty_point_set", points: nil},
		{name: "zero_learning_rate", points: separableSet(), opts: []Option{WithLearningRate(0)}},
		{name: "negative_learning_rate", points: separableSet(), opts: []Option{WithLearningRate(-0.1)}},
		{name: "zero_max_epochs", points: separableSet(), opts: []Option{WithMaxEpochs(0)}},
		{
			name:   "unknown_label",
			points: []model.Point{model.NewPoint(vector.New([]float64{1, 1}), model.Category(3))},
		},
		{
			name:   "wrong_dimensions",
			points: []model.Point{model.NewPoint(vector.New([]float64{1}), model.Positive)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.points, test.opts...); err == nil {
				t.Errorf("the configuration is invalid, an error must be returned")
			}
		})
	}
}

func TestSessionConvergesOnSeparableSet(t *testing.T) {
	s, err := New(separableSet(), WithLearningRate(0.5), WithMaxEpochs(50), WithSeed(42))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	drive(t, s)

	if s.Status() != StatusConverged {
		t.Fatalf("session status, got: %s, expected: %s", s.Status(), StatusConverged)
	}
	if s.Epoch() > 50 {
		t.Errorf("converged after the epoch limit, epoch: %d", s.Epoch())
	}
	if n := s.ErrorCount(); n != 0 {
		t.Errorf("converged with misclassified points, got: %d, expected: 0", n)
	}

	// on convergence every raw point must be classified by its label
	w := s.RawWeights()
	for i, p := range s.Points() {
		if got := w.Classify(p.X(), p.Y()); got != p.Label {
			t.Errorf("point %d classified as %v, expected: %v", i, got, p.Label)
		}
	}
}

func TestSessionExhaustsEpochsOnXOR(t *testing.T) {
	const maxEpochs = 30
	s, err := New(xorSet(), WithMaxEpochs(maxEpochs), WithSeed(7))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	drive(t, s)

	if s.Status() != StatusExhaustedEpochs {
		t.Fatalf("session status, got: %s, expected: %s", s.Status(), StatusExhaustedEpochs)
	}
	if expected := maxEpochs * 4; len(s.History()) != expected {
		t.Errorf("history length, got: %d, expected: %d", len(s.History()), expected)
	}
	if s.ErrorCount() == 0 {
		t.Errorf("an XOR set has no linear separator, the error count must stay positive")
	}
}

func TestSessionHistoryInvariants(t *testing.T) {
	s, err := New(xorSet(), WithMaxEpochs(5), WithSeed(11))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	drive(t, s)

	history := s.History()
	n := len(s.Points())
	for i, rec := range history {
		epochDone := (i+1)%n == 0
		if rec.EpochDone != epochDone {
			t.Errorf("record %d epochDone, got: %v, expected: %v", i, rec.EpochDone, epochDone)
		}
		if expected := i/n + 1; rec.Epoch != expected {
			t.Errorf("record %d epoch, got: %d, expected: %d", i, rec.Epoch, expected)
		}
	}
	if last := history[len(history)-1]; last.Weights != s.Weights() {
		t.Errorf("last history weights %v differ from session weights %v", last.Weights, s.Weights())
	}
}

// Every epoch must visit every point exactly once.
func TestSessionEpochIsPermutation(t *testing.T) {
	s, err := New(xorSet(), WithMaxEpochs(3), WithSeed(3))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("session start error: %v", err)
	}

	n := len(s.Points())
	for epoch := 1; epoch <= 3 && s.Status() == StatusRunning; epoch++ {
		seen := map[int]int{}
		for i := 0; i < n; i++ {
			rec, err := s.Next()
			if err != nil {
				t.Fatalf("session next error: %v", err)
			}
			if rec.Epoch != epoch {
				t.Fatalf("step epoch, got: %d, expected: %d", rec.Epoch, epoch)
			}
			seen[rec.PointIndex]++
		}
		for idx := 0; idx < n; idx++ {
			if seen[idx] != 1 {
				t.Errorf("epoch %d visited point %d %d times, expected: 1", epoch, idx, seen[idx])
			}
		}
	}
}

func TestSessionDeterministicWithSeed(t *testing.T) {
	points := separableSet()
	run := func() []StepRecord {
		s, err := New(points, WithLearningRate(0.5), WithSeed(1234))
		if err != nil {
			t.Fatalf("the error should not be returned: %v", err)
		}
		drive(t, s)
		return s.History()
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("seeded runs must produce identical histories, got %d and %d records", len(first), len(second))
	}
}

func TestSessionStop(t *testing.T) {
	s, err := New(xorSet(), WithSeed(5))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("session start error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatalf("session next error: %v", err)
		}
	}
	s.Stop()

	if s.Status() != StatusStoppedEarly {
		t.Errorf("session status, got: %s, expected: %s", s.Status(), StatusStoppedEarly)
	}
	if len(s.History()) != 3 {
		t.Errorf("history length after stop, got: %d, expected: 3", len(s.History()))
	}
	if _, err := s.Next(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("stepping a stopped session, got: %v, expected: %v", err, ErrNotRunning)
	}
}

func TestSessionReset(t *testing.T) {
	s, err := New(separableSet(), WithSeed(21), WithInitWeights(learner.Weights{A: 0.1}))
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	drive(t, s)
	firstID := s.RunID()

	s.Reset(22)
	if s.Status() != StatusIdle {
		t.Errorf("session status after reset, got: %s, expected: %s", s.Status(), StatusIdle)
	}
	if len(s.History()) != 0 {
		t.Errorf("history must be discarded on reset, got: %d records", len(s.History()))
	}
	if s.Weights() != (learner.Weights{A: 0.1}) {
		t.Errorf("weights must return to the initial value, got: %v", s.Weights())
	}
	if s.RunID() == firstID {
		t.Errorf("reset must assign a new run identity")
	}

	drive(t, s)
	if s.Status() != StatusConverged {
		t.Errorf("session status after restart, got: %s, expected: %s", s.Status(), StatusConverged)
	}
}
