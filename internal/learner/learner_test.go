package learner

import (
	"testing"

	"percept/internal/dataset/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		w        Weights
		x, y     float64
		expected model.Category
	}{
		{name: "positive_side", w: Weights{A: 1, B: 1, C: 0}, x: 1, y: 1, expected: model.Positive},
		{name: "negative_side", w: Weights{A: 1, B: 1, C: 0}, x: -1, y: -1, expected: model.Negative},
		{name: "zero_activation_classifies_positive", w: Weights{}, x: 3, y: -2, expected: model.Positive},
		{name: "bias_only", w: Weights{C: -0.5}, x: 0, y: 0, expected: model.Negative},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.w.Classify(test.x, test.y); got != test.expected {
				t.Errorf("compute Classify, got: %v, expected: %v", got, test.expected)
			}
		})
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name            string
		w               Weights
		x, y            float64
		label           model.Category
		eta             float64
		expected        Weights
		expectedChanged bool
	}{
		{
			name: "correct_no_update",
			w:    Weights{A: 1, B: 1, C: 0}, x: 2, y: 2, label: model.Positive, eta: 0.5,
			expected: Weights{A: 1, B: 1, C: 0}, expectedChanged: false,
		},
		{
			name: "zero_weights_positive_label_no_update",
			w:    Weights{}, x: 1, y: 1, label: model.Positive, eta: 0.5,
			expected: Weights{}, expectedChanged: false,
		},
		{
			name: "tie_break_misclassifies_negative",
			w:    Weights{}, x: -1, y: -1, label: model.Negative, eta: 0.5,
			expected: Weights{A: 0.5, B: 0.5, C: -0.5}, expectedChanged: true,
		},
		{
			name: "misclassified_positive",
			w:    Weights{A: -1, B: 0, C: 0}, x: 2, y: 0, label: model.Positive, eta: 0.5,
			expected: Weights{A: 0, B: 0, C: 0.5}, expectedChanged: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, changed := Step(test.w, test.x, test.y, test.label, test.eta)
			if got != test.expected {
				t.Errorf("compute Step, got: %v, expected: %v", got, test.expected)
			}
			if changed != test.expectedChanged {
				t.Errorf("compute Step changed flag, got: %v, expected: %v", changed, test.expectedChanged)
			}
		})
	}
}

// Step must be pure: repeated invocations with the same inputs yield
// identical outputs and never touch the input value.
func TestStepIsPure(t *testing.T) {
	w := Weights{A: 0.3, B: -0.2, C: 0.1}
	first, changedFirst := Step(w, -1, 2, model.Negative, 0.5)
	second, changedSecond := Step(w, -1, 2, model.Negative, 0.5)
	if first != second || changedFirst != changedSecond {
		t.Errorf("Step is not deterministic, got: %v/%v and %v/%v", first, changedFirst, second, changedSecond)
	}
	if w != (Weights{A: 0.3, B: -0.2, C: 0.1}) {
		t.Errorf("Step mutated its input, got: %v", w)
	}
}
