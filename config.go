package heatgrid

import (
	"fmt"
	"math"
)

// Config holds the grid parameters shared by every engine.
//
// Engine-specific parameters (thread count, listen address, worker count)
// are passed to the engine constructors directly because they do not
// describe the simulated field.
type Config struct {
	// Width is the number of grid columns. Minimum 3 (one interior column).
	Width int `yaml:"width"`

	// Height is the number of grid rows. Minimum 3 (one interior row).
	Height int `yaml:"height"`

	// BoundaryTemp is the fixed temperature of the border cells.
	BoundaryTemp float64 `yaml:"boundaryTemp"`

	// InitialTemp is the starting temperature of the interior cells.
	InitialTemp float64 `yaml:"initialTemp"`
}

// Default grid dimensions used by SetDefaults when unset.
const (
	DefaultWidth  = 100
	DefaultHeight = 100
)

// SetDefaults fills missing configuration values with defaults.
//
// Only the dimensions have non-zero defaults; zero temperatures are valid
// values and are left as provided.
func SetDefaults(cfg *Config) {
	if cfg.Width == 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height == 0 {
		cfg.Height = DefaultHeight
	}
}

// Validate checks the configuration for values no engine can run with.
func (cfg *Config) Validate() error {
	if cfg.Width < 3 {
		return fmt.Errorf("%w: Width (%d) must be >= 3", ErrInvalidConfig, cfg.Width)
	}
	if cfg.Height < 3 {
		return fmt.Errorf("%w: Height (%d) must be >= 3", ErrInvalidConfig, cfg.Height)
	}
	if math.IsNaN(cfg.BoundaryTemp) || math.IsInf(cfg.BoundaryTemp, 0) {
		return fmt.Errorf("%w: BoundaryTemp must be finite", ErrInvalidConfig)
	}
	if math.IsNaN(cfg.InitialTemp) || math.IsInf(cfg.InitialTemp, 0) {
		return fmt.Errorf("%w: InitialTemp must be finite", ErrInvalidConfig)
	}

	return nil
}

// newGrid builds the engine-owned grid after defaulting and validation.
func (cfg *Config) newGrid() (*Grid, error) {
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewGrid(cfg.Width, cfg.Height, cfg.BoundaryTemp, cfg.InitialTemp)
}
