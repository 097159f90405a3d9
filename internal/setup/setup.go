package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"percept/internal/dataset"
	"percept/internal/dataset/model"
	"percept/internal/logging"
	"percept/internal/playback"
	"percept/internal/replay"
	"percept/internal/sim"
	"percept/internal/srvenv"
	"percept/internal/trainer"
)

type TrainerConfigProvider interface {
	TrainerConfig() *trainer.Config
}

type PlaybackConfigProvider interface {
	PlaybackConfig() *playback.Config
}

type DatasetConfigProvider interface {
	DatasetConfig() *dataset.Config
}

type ReplayConfigProvider interface {
	ReplayConfig() *replay.Config
}

// Setup processes the environment into the given config and builds the
// provider functions for every concern the config covers.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var envOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var sessionProvideFn trainer.ProvideFn

	if datasetConfigProvider, ok := config.(DatasetConfigProvider); ok {
		logger.Info("Configuring dataset generator")
		provideFn, err := ProvideDatasetFor(datasetConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create dataset provide function: %w", err)
		}
		envOpts = append(envOpts, srvenv.WithDataset(provideFn))
	}

	if trainerConfigProvider, ok := config.(TrainerConfigProvider); ok {
		logger.Info("Configuring trainer")
		provideFn, err := ProvideSessionFor(trainerConfigProvider)
		if err != nil {
			return nil, fmt.Errorf("unable create session provide function: %w", err)
		}
		sessionProvideFn = provideFn
		envOpts = append(envOpts, srvenv.WithSession(sessionProvideFn))
	}

	if playbackConfigProvider, ok := config.(PlaybackConfigProvider); ok {
		logger.Info("Configuring playback")
		if sessionProvideFn == nil {
			return nil, fmt.Errorf("unable read trainer config")
		}
		provideFn, err := ProvideSimFor(playbackConfigProvider, sessionProvideFn)
		if err != nil {
			return nil, fmt.Errorf("unable create sim provide function: %w", err)
		}
		envOpts = append(envOpts, srvenv.WithSim(provideFn))
	}

	return srvenv.New(envOpts...), nil
}

func ProvideDatasetFor(provider DatasetConfigProvider) (dataset.ProvideFn, error) {
	cfg := provider.DatasetConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("dont process dataset env: %w", err)
	}
	return func() ([]model.Point, error) {
		g, err := dataset.New(
			dataset.WithShape(cfg.Shape),
			dataset.WithSize(cfg.Size),
			dataset.WithSeed(cfg.Seed),
			dataset.WithGap(cfg.Gap),
		)
		if err != nil {
			return nil, fmt.Errorf("unable create generator instance: %w", err)
		}
		return g.Generate()
	}, nil
}

func ProvideSessionFor(provider TrainerConfigProvider) (trainer.ProvideFn, error) {
	cfg := provider.TrainerConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("dont process trainer env: %w", err)
	}
	return func(points []model.Point, opts ...trainer.Option) (*trainer.Session, error) {
		defaults := []trainer.Option{
			trainer.WithLearningRate(cfg.LearningRate),
			trainer.WithMaxEpochs(cfg.MaxEpochs),
			trainer.WithSeed(cfg.Seed),
		}
		return trainer.New(points, append(defaults, opts...)...)
	}, nil
}

func ProvideSimFor(provider PlaybackConfigProvider, sessionFn trainer.ProvideFn) (sim.ProvideFn, error) {
	cfg := provider.PlaybackConfig()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("dont process playback env: %w", err)
	}
	return func(points []model.Point, shutdownCh chan<- error, opts ...sim.Option) (sim.Manager, error) {
		defaults := []sim.Option{
			sim.WithStepInterval(cfg.StepInterval),
			sim.WithUpdateStepInterval(cfg.UpdateStepInterval),
		}
		return sim.New(sessionFn, points, shutdownCh, append(defaults, opts...)...)
	}, nil
}
