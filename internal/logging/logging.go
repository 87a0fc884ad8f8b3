// Package logging builds the service's structured zap loggers and the HTTP
// request-logging middleware.
package logging

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level is the minimum log level to output (debug, info, warn, error)
	Level string
	// Format is the output format (json, console)
	Format string
	// Output is the output destination (stdout, stderr, or a file path)
	Output string
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// New creates a zap logger from the given configuration.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(enc, sink, parseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "", "stderr":
		return zapcore.Lock(os.Stderr), nil
	default:
		// Treat as file path
		file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		return zapcore.Lock(file), nil
	}
}

type ctxLoggerKey struct{}

// FromContext returns the request-scoped logger, or a no-op logger if the
// context carries none.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithContext returns a new context carrying the logger.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}
