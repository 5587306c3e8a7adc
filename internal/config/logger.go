package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the zap logger described by c.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch c.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("bad log level: %w", err)
		}
		zc.Level = level
	}
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
		zc.ErrorOutputPaths = []string{c.File}
	}
	return zc.Build()
}
