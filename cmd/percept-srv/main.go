package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats/view"

	"percept/internal/buildinfo"
	percept "percept/internal/config"
	"percept/internal/logging"
	"percept/internal/replay"
	"percept/internal/server"
	"percept/internal/setup"
	"percept/internal/shutdown"
	"percept/internal/telemetry"
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

	ctx, done := shutdown.New()
	logger := logging.FromContext(ctx)
	go func() {
		_ = http.ListenAndServe("0.0.0.0:8080", nil)
	}()
	if err := run(ctx, done); err != nil {
		logger.Fatal(err)
	}
	defer done()
}

func run(ctx context.Context, cancel func()) error {
	config := percept.Config{}
	env, err := setup.Setup(ctx, &config)
	if err != nil {
		return fmt.Errorf("setup.Setup: %w", err)
	}

	if err := telemetry.RegisterViews(); err != nil {
		return fmt.Errorf("telemetry.RegisterViews: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: "percept"})
	if err != nil {
		return fmt.Errorf("prometheus.NewExporter: %w", err)
	}
	view.RegisterExporter(exporter)

	srv, err := server.New(config.SrvAddr)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	mux := http.NewServeMux()

	trainHandler, err := replay.NewHandler(&config.Replay, env.ProvideSession())
	if err != nil {
		return fmt.Errorf("replay.NewHandler: %w", err)
	}

	mux.Handle("/train", trainHandler)
	mux.Handle("/health", server.HandleHealth(ctx))
	mux.Handle("/metrics", exporter)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
			errCh <- err
			cancel()
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}
