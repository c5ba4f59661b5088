package main

import (
	"fmt"
	"os"

	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/logger"
)

// loadConfig applies the .env overlay, loads config.yaml and validates
// the result. CONFIG_PATH and the --config flag override the default
// location, flag winning.
func loadConfig(flagPath string) (*config.Config, error) {
	if err := config.LoadEnvOptional("./.env"); err != nil {
		return nil, err
	}

	path := flagPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	if path == "" {
		path = config.DefaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		fmt.Fprintln(os.Stderr, "❌ Configuration validation failed:")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %v\n", e)
		}
		return nil, fmt.Errorf("invalid configuration")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, levelOverride string) (*logger.Logger, error) {
	level := cfg.Logging.Level
	if levelOverride != "" {
		level = levelOverride
	}

	log, err := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetDefault(log)
	return log, nil
}
