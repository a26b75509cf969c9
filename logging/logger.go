// Package logging builds the zap logger shared by the server and the CLI.
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration.
type Config struct {
	Level       string
	Format      string // "json" or "console"
	OutputPath  string // file path, "stdout" or "stderr"; empty keeps zap's default
	Development bool
}

// NewLogger creates a structured logger tagged with the service name.
func NewLogger(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", "invcost")), nil
}

// DataQuality logs a data quality issue found while building the dataset.
func DataQuality(logger *zap.Logger, entity, issue string, fields ...zap.Field) {
	logger.Warn("Data quality issue", append([]zap.Field{
		zap.String("entity", entity),
		zap.String("issue", issue),
		zap.String("type", "data_quality"),
	}, fields...)...)
}
