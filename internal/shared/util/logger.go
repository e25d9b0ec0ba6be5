package util

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger keeps the "instance | message" shape of the service logs on top of zap.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a logger for the given level (debug|info|warn|error) and
// format (console|json).
func NewLogger(level, format string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         "json",
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	switch format {
	case "json":
	case "console", "":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// NewNop discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

func (l *Logger) Info(instance, message string) {
	l.z.Info(message, zap.String("instance", instance))
}

func (l *Logger) Warn(instance, message string) {
	l.z.Warn(message, zap.String("instance", instance))
}

func (l *Logger) Error(instance string, err error) {
	l.z.Error(err.Error(), zap.String("instance", instance))
}

func (l *Logger) Fatal(instance string, err error) {
	l.z.Fatal(err.Error(), zap.String("instance", instance))
}

func (l *Logger) OK(instance, message string) {
	l.z.Info(message, zap.String("instance", instance), zap.Bool("ok", true))
}

// HTTP writes one access log line.
func (l *Logger) HTTP(status int, elapsed time.Duration, host, method, path string) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
		zap.String("host", host),
		zap.String("method", method),
		zap.String("path", path),
	}
	switch {
	case status >= 500:
		l.z.Error("http", fields...)
	case status >= 400:
		l.z.Warn("http", fields...)
	default:
		l.z.Info("http", fields...)
	}
}

func (l *Logger) Sync() error {
	return l.z.Sync()
}
