// Package logging provides the file-backed logger for orbchat.
//
// The TUI owns the terminal, so diagnostics go to a log file. Best-effort
// operations (message persistence, abort notification, history cache
// writes) log their failures here instead of surfacing them.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init opens the log file under dir and installs the global logger.
// Safe to skip entirely; L() returns a nop logger until Init succeeds.
func Init(dir, levelStr string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	var level zapcore.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = zap.DebugLevel
	case "warn", "warning":
		level = zap.WarnLevel
	case "error":
		level = zap.ErrorLevel
	default:
		level = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{filepath.Join(dir, "orbchat.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sync flushes buffered entries. Called on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = logger.Sync()
}
