package scaler

import (
	"fmt"
	"math"

	"percept/internal/dataset/model"
	"percept/internal/learner"
)

var ErrEmptyPointSet = fmt.Errorf("scaler: point set is empty")

// stdFloor replaces a numerically zero standard deviation so normalization
// never divides by zero. A stability guard, not data loss.
const stdFloor = 1e-6

// Stats hold the per-axis normalization statistics of one point set.
// Computed once before training starts and fixed for the session's lifetime.
type Stats struct {
	MeanX float64 `json:"meanX"`
	MeanY float64 `json:"meanY"`
	StdX  float64 `json:"stdX"`
	StdY  float64 `json:"stdY"`
}

// Fit computes per-axis mean and standard deviation of the point set.
func Fit(points []model.Point) (Stats, error) {
	if len(points) == 0 {
		return Stats{}, ErrEmptyPointSet
	}

	var st Stats
	n := float64(len(points))
	for i := range points {
		st.MeanX += points[i].X()
		st.MeanY += points[i].Y()
	}
	st.MeanX /= n
	st.MeanY /= n

	var varX, varY float64
	for i := range points {
		varX += math.Pow(points[i].X()-st.MeanX, 2)
		varY += math.Pow(points[i].Y()-st.MeanY, 2)
	}
	st.StdX = math.Sqrt(varX / n)
	st.StdY = math.Sqrt(varY / n)

	if st.StdX < stdFloor {
		st.StdX = stdFloor
	}
	if st.StdY < stdFloor {
		st.StdY = stdFloor
	}
	return st, nil
}

// Normalize maps raw coordinates into zero-mean/unit-variance space.
// The label passes through unchanged on the caller side.
func (st Stats) Normalize(p model.Point) (float64, float64) {
	return (p.X() - st.MeanX) / st.StdX, (p.Y() - st.MeanY) / st.StdY
}

// Denormalize converts a boundary learned in standardized space back to raw
// coordinate space. The returned weights describe the same decision boundary
// as the input weights do over normalized points.
func (st Stats) Denormalize(w learner.Weights) learner.Weights {
	return learner.Weights{
		A: w.A / st.StdX,
		B: w.B / st.StdY,
		C: w.C - w.A*st.MeanX/st.StdX - w.B*st.MeanY/st.StdY,
	}
}
