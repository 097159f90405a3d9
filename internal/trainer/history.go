package trainer

import (
	"percept/internal/learner"
)

// StepRecord is one immutable entry of the session's append-only history,
// one per point visited. The history is the audit trail of a run and the
// sole input to animation.
type StepRecord struct {
	// 1-based epoch the step belongs to
	Epoch int `json:"epoch"`
	// Index of the visited point in the original point set
	PointIndex int `json:"pointIndex"`
	// Weights after the step, in normalized space
	Weights learner.Weights `json:"weights"`
	// Weights after the step, mapped back to raw coordinate space
	RawWeights learner.Weights `json:"rawWeights"`
	// Whether the step changed the weights
	Updated bool `json:"updated"`
	// EpochDone marks the last step of an epoch; only then is
	// EpochErrorCount meaningful
	EpochDone bool `json:"epochDone,omitempty"`
	// Misclassification count over the whole point set with the epoch's
	// final weights
	EpochErrorCount int `json:"epochErrorCount,omitempty"`
}
