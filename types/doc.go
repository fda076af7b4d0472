// Package types contains the shared domain types and interfaces of the
// heatgrid library.
//
// It exists so internal packages can depend on partitions, states, errors,
// and observability interfaces without importing the root heatgrid package,
// which re-exports the most commonly used names as aliases.
package types
