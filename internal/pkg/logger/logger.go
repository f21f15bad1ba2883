package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.Logger
)

// ParseLevel maps a level name onto a zap level. Unknown names fall back to info.
func ParseLevel(levelStr string) (zapcore.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return zap.DebugLevel, true
	case "INFO", "":
		return zap.InfoLevel, true
	case "WARN", "WARNING":
		return zap.WarnLevel, true
	case "ERROR":
		return zap.ErrorLevel, true
	default:
		return zap.InfoLevel, false
	}
}

// Init builds the global JSON zap logger and installs it as the default slog handler.
func Init(levelStr string) (*zap.Logger, error) {
	level, ok := ParseLevel(levelStr)

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	SetLogger(zl)
	if !ok {
		zl.Warn("Invalid log level string, defaulting to INFO", zap.String("input", levelStr))
	}
	return zl, nil
}

// SetLogger replaces the global logger and routes slog through it.
func SetLogger(zl *zap.Logger) {
	mu.Lock()
	global = zl
	mu.Unlock()

	slog.SetDefault(slog.New(zapslog.NewHandler(zl.Core())))
}

// L returns the global zap logger, initialising it at info level on first use.
func L() *zap.Logger {
	mu.RLock()
	zl := global
	mu.RUnlock()
	if zl != nil {
		return zl
	}

	zl, err := Init("INFO")
	if err != nil {
		zl = zap.NewNop()
		SetLogger(zl)
	}
	return zl
}

func ensureInitialized() {
	_ = L()
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	slog.Default().Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	slog.Default().Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	slog.Default().Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	slog.Default().Log(context.Background(), slog.LevelError, msg, args...)
}

// Fatal logs a message at ErrorLevel, flushes and exits.
func Fatal(msg string, args ...any) {
	Error(msg, args...)
	_ = L().Sync()
	os.Exit(1)
}
