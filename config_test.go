package heatgrid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	SetDefaults(&cfg)
	require.Equal(t, DefaultWidth, cfg.Width)
	require.Equal(t, DefaultHeight, cfg.Height)
	require.Equal(t, 0.0, cfg.BoundaryTemp, "temperatures have no defaults")
	require.Equal(t, 0.0, cfg.InitialTemp)

	// Explicit values are preserved.
	cfg = Config{Width: 12, Height: 34, BoundaryTemp: 5}
	SetDefaults(&cfg)
	require.Equal(t, 12, cfg.Width)
	require.Equal(t, 34, cfg.Height)
	require.Equal(t, 5.0, cfg.BoundaryTemp)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Width: 10, Height: 10, BoundaryTemp: 100}, false},
		{"minimum size", Config{Width: 3, Height: 3}, false},
		{"width too small", Config{Width: 2, Height: 10}, true},
		{"height too small", Config{Width: 10, Height: 2}, true},
		{"nan boundary", Config{Width: 10, Height: 10, BoundaryTemp: math.NaN()}, true},
		{"inf initial", Config{Width: 10, Height: 10, InitialTemp: math.Inf(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
