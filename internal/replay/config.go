package replay

import "time"

type Config struct {
	RequestTimeout time.Duration `envconfig:"PERCEPT_REPLAY_REQUEST_TIMEOUT" default:"30s"`
	// Maximum number of datasets trained per request
	MaxDatasets int `envconfig:"PERCEPT_REPLAY_MAX_DATASETS" default:"8"`
	// Maximum number of points per submitted dataset
	MaxPoints int `envconfig:"PERCEPT_REPLAY_MAX_POINTS" default:"10000"`
}
