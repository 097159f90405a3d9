package trainer

// Status is the single source of truth for the session's lifecycle.
type Status uint8

const (
	StatusIdle Status = iota
	StatusRunning
	StatusConverged
	StatusStoppedEarly
	StatusExhaustedEpochs
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusRunning:
		return "RUNNING"
	case StatusConverged:
		return "CONVERGED"
	case StatusStoppedEarly:
		return "STOPPED_EARLY"
	case StatusExhaustedEpochs:
		return "EXHAUSTED_EPOCHS"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further steps can be produced without a reset.
func (s Status) Terminal() bool {
	return s == StatusConverged || s == StatusStoppedEarly || s == StatusExhaustedEpochs
}
