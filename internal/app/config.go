package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProfilePath string // hcl file or directory, optional
	DBPath      string // sqlite provenance database

	// DryRun prepares both calculations without executing either.
	DryRun bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("DBPath is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
