package dataset

import (
	"fmt"
	"time"

	"github.com/valyala/fastrand"

	"percept/internal/dataset/model"
	"percept/pkg/math/vector"
)

type Shape string

const (
	ShapeBlobs Shape = "BLOBS"
	ShapeXOR   Shape = "XOR"
)

// ProvideFn is the contract for returning a fresh point set.
type ProvideFn func() ([]model.Point, error)

type Option func(*Generator)

func WithSize(n int) Option {
	return func(g *Generator) {
		g.opts.size = n
	}
}

func WithSeed(seed uint32) Option {
	return func(g *Generator) {
		g.opts.seed = seed
	}
}

func WithGap(gap float64) Option {
	return func(g *Generator) {
		g.opts.gap = gap
	}
}

func WithShape(s Shape) Option {
	return func(g *Generator) {
		g.opts.shape = s
	}
}

type options struct {
	shape Shape
	size  int
	seed  uint32
	gap   float64
}

var defaultOptions = options{shape: ShapeBlobs, size: 40, gap: 1.0}

// Generator produces synthetic labeled point sets for the trainer.
type Generator struct {
	opts options
	rng  fastrand.RNG
}

func New(opts ...Option) (*Generator, error) {
	g := &Generator{opts: defaultOptions}
	for _, f := range opts {
		f(g)
	}
	if g.opts.size <= 0 {
		return nil, fmt.Errorf("dataset: size must be positive, got %d", g.opts.size)
	}
	seed := g.opts.seed
	if seed == 0 {
		seed = uint32(time.Now().UnixNano())
	}
	g.rng.Seed(seed)
	return g, nil
}

// Generate returns a point set of the configured shape.
func (g *Generator) Generate() ([]model.Point, error) {
	switch g.opts.shape {
	case ShapeBlobs:
		return g.Blobs(g.opts.size), nil
	case ShapeXOR:
		return g.XOR(), nil
	default:
		return nil, fmt.Errorf("dataset: unknown shape: %s", g.opts.shape)
	}
}

// Blobs returns n points in two clusters centered at (+-c, +-c) with
// c = 1 + gap and per-axis jitter in [-1, 1]. For gap > 0 the set is
// linearly separable by x + y = 0 with margin sqrt(2)*gap.
func (g *Generator) Blobs(n int) []model.Point {
	points := make([]model.Point, 0, n)
	center := 1 + g.opts.gap
	for i := 0; i < n; i++ {
		label := model.Positive
		c := center
		if i%2 == 1 {
			label = model.Negative
			c = -center
		}
		x := c + g.jitter()
		y := c + g.jitter()
		points = append(points, model.NewPoint(vector.New([]float64{x, y}), label))
	}
	return points
}

// XOR returns the 4-point XOR-labeled set, which has no linear separator.
func (g *Generator) XOR() []model.Point {
	return []model.Point{
		model.NewPoint(vector.New([]float64{0, 0}), model.Negative),
		model.NewPoint(vector.New([]float64{1, 1}), model.Negative),
		model.NewPoint(vector.New([]float64{1, 0}), model.Positive),
		model.NewPoint(vector.New([]float64{0, 1}), model.Positive),
	}
}

// jitter returns a uniform value in [-1, 1].
func (g *Generator) jitter() float64 {
	return float64(g.rng.Uint32n(2001))/1000.0 - 1.0
}
