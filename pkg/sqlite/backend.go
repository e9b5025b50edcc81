// Package sqlite provides the public API for the SQLite knobs store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/knobs/internal/sqlite"
	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Backend is a types.Store that is attached to a data directory and can
// declare new keys.
type Backend interface {
	types.Store

	// Attach opens the data directory named by config.
	Attach(config types.Config) error

	// Detach releases the store. Unsaved values are discarded.
	Detach() error

	// Define declares a key with its current value.
	Define(def types.Definition, value any) error

	// DefineEnum stores an enum type for keys of that type.
	DefineEnum(t types.Type) error

	// Seed defines the sample configuration when the store is empty and
	// returns the number of keys defined.
	Seed() (int, error)
}

// Option configures a Backend.
type Option = sqlite.Option

// WithRegistry sets the registry used to describe stored value types.
func WithRegistry(r *descriptor.Registry) Option {
	return sqlite.WithRegistry(r)
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return sqlite.WithLogger(l)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".knobs-data",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) Backend {
	return sqlite.NewBackend(opts...)
}
