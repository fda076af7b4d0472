package logging

import "github.com/arloliu/heatgrid/types"

// NopLogger implements a no-op logger.
//
// All messages are discarded. Used as the default when no logger is
// provided, eliminating nil checks throughout the engines.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (*NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (*NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (*NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (*NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message and does not exit; a no-op logger must not
// terminate the program.
func (*NopLogger) Fatal(_ string, _ ...any) {}
