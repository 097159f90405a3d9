package playback

import "time"

type Config struct {
	// Pause between two emitted point-steps
	StepInterval time.Duration `envconfig:"PERCEPT_STEP_INTERVAL" default:"300ms"`
	// Longer pause after a step that changed the weights, keeps learning
	// events visually legible
	UpdateStepInterval time.Duration `envconfig:"PERCEPT_UPDATE_STEP_INTERVAL" default:"600ms"`
}
