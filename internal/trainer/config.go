package trainer

type Config struct {
	// Magnitude of a single mistake-driven weight update
	LearningRate float64 `envconfig:"PERCEPT_LEARNING_RATE" default:"0.5"`
	// Hard epoch limit so non-separable data terminates gracefully
	MaxEpochs int `envconfig:"PERCEPT_MAX_EPOCHS" default:"50"`
	// Shuffle seed, 0 seeds from the clock
	Seed uint32 `envconfig:"PERCEPT_SEED"`
}
