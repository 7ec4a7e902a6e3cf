// Package log builds the zap loggers used by stores and test harnesses.
package log

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrUnknownLevel = errors.New("unknown log level")

// Level defines the minimum severity a logger emits.
type Level string

const (
	// LevelInfo is used for general informational messages.
	LevelInfo Level = "info"

	// LevelWarn is used for potentially harmful situations.
	LevelWarn Level = "warn"

	// LevelError is used for error events that might still allow the application to continue running.
	LevelError Level = "error"

	// LevelDebug is used for debugging messages with detailed internal information,
	// such as effect registrations and dropped actions.
	LevelDebug Level = "debug"
)

// ParseLevel accepts the level names case-insensitively. An empty string is
// LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch lvl := Level(strings.ToLower(strings.TrimSpace(s))); lvl {
	case "":
		return LevelInfo, nil
	case LevelInfo, LevelWarn, LevelError, LevelDebug:
		return lvl, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	case LevelDebug:
		return zap.DebugLevel
	default:
		return zap.InfoLevel
	}
}

// New builds a JSON production logger, or a console development logger when
// development is set.
func New(level Level, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// NewConsole writes human readable lines to stdout at the given level.
func NewConsole(level Level) *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		level.zapLevel(),
	)
	return zap.New(consoleCore)
}

// Sync flushes logger, ignoring the errors stdout and stderr report on some
// platforms when they cannot be synced.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		logger.Warn("failed to sync logger", zap.Error(err))
	}
}
