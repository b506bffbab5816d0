// Package logging builds the zap loggers used by the Nebula client.
// CLI subcommands log to stderr; the interactive TUI owns the terminal, so
// its logger writes to a file under the config directory instead.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewCLI returns a logger suitable for non-interactive subcommands.
func NewCLI(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewFile returns a logger that appends to a dated log file in dir.
// Used by the TUI so log output never corrupts the alternate screen.
func NewFile(dir string, verbose bool) (*zap.Logger, error) {
	if dir == "" {
		return nil, fmt.Errorf("log directory required")
	}

	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("%s_client.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level)

	return zap.New(core), nil
}

// Nop returns a disabled logger for tests and optional dependencies.
func Nop() *zap.Logger {
	return zap.NewNop()
}
