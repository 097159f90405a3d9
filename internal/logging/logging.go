package logging

import (
	"context"
	"sync"

	envconfig "github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey = contextKey("logger")

// Config of the logger, read from the environment
type Config struct {
	Level string `env:"PERCEPT_LOG_LEVEL,default=info"`
	Devel bool   `env:"PERCEPT_LOG_DEVEL"`
}

var (
	defaultLogger     *zap.SugaredLogger
	defaultLoggerOnce sync.Once
)

func NewLogger(level string, devel bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if devel {
		cfg = zap.NewDevelopmentConfig()
	}

	var l zap.AtomicLevel
	if err := l.UnmarshalText([]byte(level)); err == nil {
		cfg.Level = l
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

// NewLoggerFromEnv builds a logger configured by PERCEPT_LOG_* variables
func NewLoggerFromEnv(ctx context.Context) *zap.SugaredLogger {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return NewLogger("info", false)
	}
	return NewLogger(cfg.Level, cfg.Devel)
}

func DefaultLogger() *zap.SugaredLogger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewLoggerFromEnv(context.Background())
	})
	return defaultLogger
}

// WithLogger puts the logger into the context
func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context or the default one
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return logger
	}
	return DefaultLogger()
}
