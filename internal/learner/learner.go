package learner

import (
	"percept/internal/dataset/model"
)

// Weights are the coefficients of the decision boundary a*x + b*y + c = 0.
// The value is replaced on every update, never mutated through a shared
// reference, so consumers holding an old snapshot are unaffected.
type Weights struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

func (w Weights) Activation(x, y float64) float64 {
	return w.A*x + w.B*y + w.C
}

// Classify returns the predicted class for the given coordinates.
// A zero activation classifies positive, the tie-break is part of the contract.
func (w Weights) Classify(x, y float64) model.Category {
	if w.Activation(x, y) >= 0 {
		return model.Positive
	}
	return model.Negative
}

// Step applies the mistake-driven perceptron rule to one sample.
// Pure: same inputs always yield the same outputs.
func Step(w Weights, x, y float64, label model.Category, eta float64) (Weights, bool) {
	if w.Classify(x, y) == label {
		return w, false
	}
	t := float64(label)
	w.A += eta * t * x
	w.B += eta * t * y
	w.C += eta * t
	return w, true
}
