// Package hooks provides the default no-op engine hooks.
package hooks

import (
	"context"

	"github.com/arloliu/heatgrid/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are
// provided, eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, int, float64) error                         = (*NopHooks)(nil).OnIterationComplete
	_ func(context.Context, types.WorkerState, types.WorkerState) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, error) error                                = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}

	return types.Hooks{
		OnIterationComplete: h.OnIterationComplete,
		OnStateChanged:      h.OnStateChanged,
		OnError:             h.OnError,
	}
}

// OnIterationComplete is a no-op implementation.
func (h *NopHooks) OnIterationComplete(_ context.Context, _ int, _ float64) error {
	return nil
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.WorkerState) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
