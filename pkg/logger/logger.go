// Package logger provides opinionated logging capabilities for sieve
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type config struct {
	json   bool
	output io.Writer
}

// Option configures NewLogger.
type Option func(*config)

// WithJSON switches to the JSON encoder (for the server).
func WithJSON() Option {
	return func(c *config) {
		c.json = true
	}
}

// WithOutput writes logs to w instead of stderr.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// NewLogger builds the console logger used by every sieve command. Logs go to
// stderr so command output on stdout stays machine readable.
func NewLogger(debug bool, opts ...Option) *zap.Logger {
	cfg := &config{output: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.json {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	// Set log level
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.output), level)

	return zap.New(core, zap.AddCaller())
}
