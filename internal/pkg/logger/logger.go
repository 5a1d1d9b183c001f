package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Error(msg string, err error)
	Warn(msg string)
	Info(msg string)
	Debug(msg string)
}

// Config controls the zap backend.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

type zapLogger struct {
	logger *zap.Logger
}

// New builds a zap-backed Logger. Format "json" uses the production encoder,
// anything else the development console encoder.
func New(cfg Config) (Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &zapLogger{logger: l}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &zapLogger{logger: zap.NewNop()}
}

// Error logs an error message. err may be nil.
func (l *zapLogger) Error(msg string, err error) {
	if err == nil {
		l.logger.Error(msg)
		return
	}
	l.logger.Error(msg, zap.Error(err))
}

// Warn logs a warning message.
func (l *zapLogger) Warn(msg string) {
	l.logger.Warn(msg)
}

// Info logs an informational message.
func (l *zapLogger) Info(msg string) {
	l.logger.Info(msg)
}

// Debug logs a debug message.
func (l *zapLogger) Debug(msg string) {
	l.logger.Debug(msg)
}

// Sync flushes buffered entries if the logger supports it.
func Sync(l Logger) {
	if zl, ok := l.(*zapLogger); ok {
		_ = zl.logger.Sync()
	}
}
