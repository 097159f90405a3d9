package dataset

type Config struct {
	// Shape of the synthetic set, BLOBS is linearly separable, XOR is not
	Shape Shape `envconfig:"PERCEPT_DATASET_SHAPE" default:"BLOBS"`
	// Number of generated points, XOR ignores it
	Size int `envconfig:"PERCEPT_DATASET_SIZE" default:"40"`
	// RNG seed, 0 seeds from the clock
	Seed uint32 `envconfig:"PERCEPT_DATASET_SEED"`
	// Half-gap between the two blob clusters, governs the margin
	Gap float64 `envconfig:"PERCEPT_DATASET_GAP" default:"1.0"`
}
