// Package logging builds the zap logger used for diagnostics, with levels
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LevelDebug logs every history step that resolved paths
	LevelDebug = "debug"

	// LevelInfo adds run summaries
	LevelInfo = "info"

	// LevelWarn only reports unresolved paths and other anomalies
	LevelWarn = "warn"

	// LevelNone disables logging
	LevelNone = "none"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = LevelWarn

// New returns a console zap logger writing to stderr at the given level.
func New(level string) (*zap.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	if level == LevelNone {
		return zap.NewNop(), nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil

	return cfg.Build()
}
