// Package logging adapts zap to the typedprefs.Logger interface for command line tools.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CreativeUnicorns/typedprefs"
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent.
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "TYPEDPREFS_LOG_LEVEL"

// ZapLogger implements typedprefs.Logger on a zap sugared logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var _ typedprefs.Logger = (*ZapLogger)(nil)

// NewZapLogger creates a console logger writing to stderr at level.
// If level is empty, it checks TYPEDPREFS_LOG_LEVEL; if neither is set the logger
// discards everything.
func NewZapLogger(level string) (*ZapLogger, error) {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		return &ZapLogger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}, nil
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	atomic := zap.NewAtomicLevelAt(zapLevel)
	config := zap.Config{
		Level:            atomic,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	logger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &ZapLogger{sugar: logger.Sugar(), level: atomic}, nil
}

// NewFromCore wraps core; level must be the level enabler core was built with.
func NewFromCore(core zapcore.Core, level zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{sugar: zap.New(core).Sugar(), level: level}
}

// ParseLevel maps "debug", "info", "warn" and "error" to zap levels.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("%w: unknown log level %q", typedprefs.ErrInvalidInput, level)
}

// Debug logs a debug message with alternating key-value pairs.
func (l *ZapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// Info logs an info message with alternating key-value pairs.
func (l *ZapLogger) Info(msg string, args ...any) { l.sugar.Infow(msg, args...) }

// Warn logs a warning message with alternating key-value pairs.
func (l *ZapLogger) Warn(msg string, args ...any) { l.sugar.Warnw(msg, args...) }

// Error logs an error message with alternating key-value pairs.
func (l *ZapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

// SetLevel changes the minimum level.
func (l *ZapLogger) SetLevel(level typedprefs.LogLevel) {
	switch {
	case level <= typedprefs.LogLevelDebug:
		l.level.SetLevel(zapcore.DebugLevel)
	case level <= typedprefs.LogLevelInfo:
		l.level.SetLevel(zapcore.InfoLevel)
	case level <= typedprefs.LogLevelWarn:
		l.level.SetLevel(zapcore.WarnLevel)
	default:
		l.level.SetLevel(zapcore.ErrorLevel)
	}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
