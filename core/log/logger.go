package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LevelTrace sits below debug for the noisiest payload dumps
const LevelTrace = slog.Level(-8)

var (
	mu     sync.RWMutex
	logger *slog.Logger
	level  = new(slog.LevelVar)
	output io.Writer = os.Stdout
	asJSON bool
)

func init() {
	// Very high level to disable all logging until the level is configured
	level.Set(slog.Level(1000))
	rebuild()
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	logger = slog.New(handler)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

func Trace(msg string, args ...any) {
	current().Log(context.Background(), LevelTrace, msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetFormat switches between the JSON handler used in production and the human-readable text handler.
func SetFormat(json bool) {
	mu.Lock()
	defer mu.Unlock()
	asJSON = json
	rebuild()
}

// SetOutput redirects log output, mainly so tests can capture lines.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// ParseLevel maps a LOG_LEVEL value onto a slog level.
func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (expected error, warn, info, debug or trace)", value)
	}
}
