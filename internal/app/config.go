package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // .hcl/.yaml file or a directory of them

	LogFormat   string
	LogLevel    string
	WorkerCount int

	// OrderOnly prints the topological order instead of executing tasks.
	OrderOnly bool
	// Repeat drives the grid to completion this many times. The graph is
	// validated once; every run after the first executes on a clone.
	Repeat int
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.Repeat < 1 {
		cfg.Repeat = 1
	}
	return &cfg, nil
}
