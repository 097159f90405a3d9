package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"percept/internal/dataset/model"
	"percept/internal/trainer"
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

func provideSession(points []model.Point, opts ...trainer.Option) (*trainer.Session, error) {
	return trainer.New(points, opts...)
}

type stepCounter struct {
	mtx sync.Mutex
	n   int
}

func (c *stepCounter) onStep(trainer.StepRecord) {
	c.mtx.Lock()
	c.n++
	c.mtx.Unlock()
}

func (c *stepCounter) count() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.n
}

func waitDone(t *testing.T, m Manager) {
	t.Helper()
	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("manager run did not finish in time")
	}
}

func TestManagerValidation(t *testing.T) {
	if _, err := New(nil, separableSet(), nil); err == nil {
		t.Errorf("the provide function is not defined, an error must be returned")
	}
	if _, err := New(provideSession, nil, nil); err == nil {
		t.Errorf("the point set is empty, an error must be returned")
	}
}

func TestManagerRunsToConvergence(t *testing.T) {
	counter := &stepCounter{}
	shutdownCh := make(chan error, 1)
	m, err := New(
		provideSession,
		separableSet(),
		shutdownCh,
		WithStepInterval(time.Millisecond),
		WithUpdateStepInterval(time.Millisecond),
		WithTrainerOptions(trainer.WithSeed(42)),
		WithObserver(counter.onStep),
	)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("manager run error: %v", err)
	}

	select {
	case err := <-shutdownCh:
		if err != nil {
			t.Fatalf("run finished with error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not signal shutdown in time")
	}

	session := m.Session()
	if session.Status() != trainer.StatusConverged {
		t.Errorf("session status, got: %s, expected: %s", session.Status(), trainer.StatusConverged)
	}
	if got := counter.count(); got != len(session.History()) {
		t.Errorf("observed steps, got: %d, expected: %d", got, len(session.History()))
	}
}

func TestManagerRestartSwapsPointSet(t *testing.T) {
	m, err := New(
		provideSession,
		xorSet(),
		nil,
		WithStepInterval(time.Millisecond),
		WithUpdateStepInterval(time.Millisecond),
		WithTrainerOptions(trainer.WithSeed(7), trainer.WithMaxEpochs(3)),
	)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("manager run error: %v", err)
	}
	first := m.Session()

	if err := m.Restart(context.Background(), separableSet()); err != nil {
		t.Fatalf("manager restart error: %v", err)
	}
	waitDone(t, m)

	second := m.Session()
	if second == first {
		t.Fatalf("restart must build a fresh session")
	}
	if second.Status() != trainer.StatusConverged {
		t.Errorf("session status, got: %s, expected: %s", second.Status(), trainer.StatusConverged)
	}
	if got := len(second.Points()); got != len(separableSet()) {
		t.Errorf("restarted point set, got: %d points, expected: %d", got, len(separableSet()))
	}
}

func TestManagerStop(t *testing.T) {
	m, err := New(
		provideSession,
		xorSet(),
		nil,
		WithStepInterval(5*time.Millisecond),
		WithUpdateStepInterval(5*time.Millisecond),
		WithTrainerOptions(trainer.WithSeed(13)),
	)
	if err != nil {
		t.Fatalf("the error should not be returned: %v", err)
	}
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("manager run error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	m.Stop()
	waitDone(t, m)

	if m.Session().Status() != trainer.StatusStoppedEarly {
		t.Errorf("session status, got: %s, expected: %s", m.Session().Status(), trainer.StatusStoppedEarly)
	}
	if err := m.Run(context.Background()); err == nil {
		t.Errorf("the manager is closed, an error must be returned")
	}
	if err := m.Restart(context.Background(), separableSet()); err == nil {
		t.Errorf("the manager is closed, an error must be returned")
	}
}
