// Package logging builds the zap logger handed to the catalog, the table
// engine and the shell.
package logging

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultConfig is zap's production config without sampling, writing
// JSON lines with ISO8601 times to stderr. Stdout belongs to the shell.
func DefaultConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	enc := &cfg.EncoderConfig
	enc.TimeKey = "time"
	enc.LevelKey = "severity"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// ParseLevel resolves the log.level setting. Besides zap's level names it
// takes "warning" and a numeric level such as "-1".
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return zapcore.WarnLevel, nil
	}
	if lvl, err := zapcore.ParseLevel(s); err == nil {
		return lvl, nil
	}

	n, err := strconv.ParseInt(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return zapcore.Level(n), nil
}

// New builds a logger from DefaultConfig at the given level.
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
