package types

import (
	"errors"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
)

// Key identifies one persisted configuration value.
type Key struct {
	Section string
	Key     string
}

func (k Key) String() string {
	return k.Section + "." + k.Key
}

// Definition describes one persisted configuration key. Default is nil when
// the key declares no default; Constraint is nil when any value is accepted.
type Definition struct {
	Section     string
	Key         string
	Type        Type
	Default     any
	Constraint  *constraint.Constraint
	Description string
}

// Store is the persisted configuration a surface is assembled from and saved
// back to. Keys are returned in definition order.
type Store interface {
	// Keys enumerates every defined key.
	Keys() ([]Key, error)

	// Definition returns the declaration of a key.
	// Returns ErrKeyNotFound if the key is not defined.
	Definition(section, key string) (Definition, error)

	// Get returns the current boxed value of a key.
	Get(section, key string) (any, error)

	// Set replaces the current value of a key. The change is held in memory
	// until Save.
	Set(section, key string, value any) error

	// Save flushes every value to persistent storage.
	Save() error

	// Reload discards unsaved values and re-reads persistent storage.
	Reload() error

	// Path returns the location of the persisted file, or "".
	Path() string
}

// Store errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrKeyNotFound     = errors.New("key not found")
	ErrDuplicateKey    = errors.New("key already defined")
	ErrInvalidKey      = errors.New("section and key must not be empty")
)

// Localizer supplies display labels and descriptions for section and key ids.
type Localizer interface {
	// Label returns the display name for id, or id itself.
	Label(id string) string

	// Description returns the description for id, or "".
	Description(id string) string
}

// NopLocalizer returns ids unchanged and no descriptions.
type NopLocalizer struct{}

func (NopLocalizer) Label(id string) string { return id }

func (NopLocalizer) Description(string) string { return "" }
