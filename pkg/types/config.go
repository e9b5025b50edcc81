package types

import "errors"

// Config holds backend selection and parameters for attaching a store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Sync selects when Set writes reach the data files. Empty means
	// SyncOnSave.
	Sync string `json:"sync,omitempty" yaml:"sync,omitempty"`
}

// Sync strategies.
const (
	SyncOnSave    = "on_save"
	SyncImmediate = "immediate"
)

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrSyncUnknown    = errors.New("unknown sync strategy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Sync {
	case "", SyncOnSave, SyncImmediate:
		return nil
	default:
		return ErrSyncUnknown
	}
}

// SyncStrategy returns the effective sync strategy.
func (c Config) SyncStrategy() string {
	if c.Sync == "" {
		return SyncOnSave
	}
	return c.Sync
}
