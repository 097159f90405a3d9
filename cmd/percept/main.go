package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/davecgh/go-spew/spew"

	"percept/internal/buildinfo"
	percept "percept/internal/config"
	"percept/internal/dataset"
	"percept/internal/dataset/model"
	"percept/internal/logging"
	"percept/internal/setup"
	"percept/internal/shutdown"
	"percept/internal/sim"
	"percept/internal/srvenv"
	"percept/internal/trainer"
	"percept/pkg/rworker"
)

const historyTailLen = 10

var (
	scenarioPath  = flag.String("scenarios", "", "path to a TOML scenario file, empty runs a single env-configured session")
	verbose       = flag.Bool("v", false, "dump the history tail of every finished run")
	maxConcurrent = flag.Int("concurrency", 2, "how many scenarios are trained at once")
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(
		os.Stdout,
		"%s: %s, %s\n",
		buildinfo.Info.Name(),
		buildinfo.Info.Time(),
		buildinfo.Info.Tag(),
	)
	flag.Parse()

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	if err := run(ctx); err != nil {
		logger.Fatal(err)
	}
	defer done()
}

func run(ctx context.Context) error {
	config := percept.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	if *scenarioPath != "" {
		return runScenarios(ctx, env, *scenarioPath)
	}
	return runSingle(ctx, env)
}

func runSingle(ctx context.Context, env *srvenv.SrvEnv) error {
	logger := logging.FromContext(ctx)

	points, err := env.ProvideDataset()()
	if err != nil {
		return fmt.Errorf("dataset provider function error: %w", err)
	}

	shutdownCh := make(chan error, 1)
	m, err := env.ProvideSim()(points, shutdownCh, sim.WithObserver(logStep(ctx, "default")))
	if err != nil {
		return fmt.Errorf("sim provider function error: %w", err)
	}
	if err := m.Run(ctx); err != nil {
		return fmt.Errorf("sim.Run: %w", err)
	}

	select {
	case err := <-shutdownCh:
		summarize(ctx, "default", m.Session())
		return err
	case <-ctx.Done():
		m.Stop()
		<-m.Done()
		logger.Info("run cancelled")
		summarize(ctx, "default", m.Session())
		return nil
	}
}

type scenarioFile struct {
	Scenario []scenario `toml:"scenario"`
}

type scenario struct {
	Name         string  `toml:"name"`
	Shape        string  `toml:"shape"`
	Size         int     `toml:"size"`
	Seed         uint32  `toml:"seed"`
	Gap          float64 `toml:"gap"`
	LearningRate float64 `toml:"learningRate"`
	MaxEpochs    int     `toml:"maxEpochs"`
}

func runScenarios(ctx context.Context, env *srvenv.SrvEnv, path string) error {
	logger := logging.FromContext(ctx)

	var file scenarioFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("unable decode scenario file %s: %w", path, err)
	}
	if len(file.Scenario) == 0 {
		return fmt.Errorf("scenario file %s holds no scenarios", path)
	}

	wg := sync.WaitGroup{}
	errCh := make(chan error, len(file.Scenario))
	rateCh := make(chan struct{}, *maxConcurrent)
	shutdownCh := make(chan error, len(file.Scenario))

	for _, sc := range file.Scenario {
		sc := sc
		rworker.Job(&wg, func() error {
			points, err := generate(sc)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			m, err := env.ProvideSim()(
				points,
				shutdownCh,
				sim.WithObserver(logStep(ctx, sc.Name)),
				sim.WithTrainerOptions(trainerOptions(sc)...),
			)
			if err != nil {
				return fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			if err := m.Run(ctx); err != nil {
				return fmt.Errorf("scenario %q: %w", sc.Name, err)
			}
			select {
			case <-m.Done():
			case <-ctx.Done():
				m.Stop()
				<-m.Done()
			}
			summarize(ctx, sc.Name, m.Session())
			return nil
		}, rateCh, errCh)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		logger.Errorf("scenario error: %v", err)
	}
	return nil
}

func generate(sc scenario) ([]model.Point, error) {
	var opts []dataset.Option
	if sc.Shape != "" {
		opts = append(opts, dataset.WithShape(dataset.Shape(sc.Shape)))
	}
	if sc.Size > 0 {
		opts = append(opts, dataset.WithSize(sc.Size))
	}
	if sc.Seed != 0 {
		opts = append(opts, dataset.WithSeed(sc.Seed))
	}
	if sc.Gap != 0 {
		opts = append(opts, dataset.WithGap(sc.Gap))
	}
	g, err := dataset.New(opts...)
	if err != nil {
		return nil, err
	}
	return g.Generate()
}

func trainerOptions(sc scenario) []trainer.Option {
	var opts []trainer.Option
	if sc.LearningRate > 0 {
		opts = append(opts, trainer.WithLearningRate(sc.LearningRate))
	}
	if sc.MaxEpochs > 0 {
		opts = append(opts, trainer.WithMaxEpochs(sc.MaxEpochs))
	}
	if sc.Seed != 0 {
		opts = append(opts, trainer.WithSeed(sc.Seed))
	}
	return opts
}

func logStep(ctx context.Context, name string) func(trainer.StepRecord) {
	logger := logging.FromContext(ctx)
	return func(rec trainer.StepRecord) {
		logger.Debugf(
			"%s: epoch %d point %d updated=%v boundary %.4f*x + %.4f*y + %.4f = 0",
			name, rec.Epoch, rec.PointIndex, rec.Updated,
			rec.RawWeights.A, rec.RawWeights.B, rec.RawWeights.C,
		)
	}
}

func summarize(ctx context.Context, name string, session *trainer.Session) {
	logger := logging.FromContext(ctx)
	if session == nil {
		return
	}
	history := session.History()
	logger.Infof(
		"%s: status=%s epochs=%d steps=%d misclassified=%d",
		name, session.Status(), session.Epoch(), len(history), session.ErrorCount(),
	)
	if *verbose {
		tail := history
		if len(tail) > historyTailLen {
			tail = tail[len(tail)-historyTailLen:]
		}
		_, _ = fmt.Fprint(os.Stdout, spew.Sdump(session.RawWeights(), tail))
	}
}
