package descriptor

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/knobs/pkg/types"
)

// builtins holds the immutable descriptors of the built-in types, keyed by
// type name.
var builtins = buildBuiltins()

func buildBuiltins() map[string]*Descriptor {
	configs := []Config{
		stringConfig(),
		boolConfig(),
		signedConfig[int8](types.Int8, 8, true),
		signedConfig[int16](types.Int16, 16, true),
		signedConfig[int32](types.Int32, 32, false),
		signedConfig[int64](types.Int64, 64, false),
		signedConfig[int](types.Int, strconv.IntSize, false),
		unsignedConfig[uint8](types.Uint8, 8, true),
		unsignedConfig[uint16](types.Uint16, 16, true),
		unsignedConfig[uint32](types.Uint32, 32, false),
		unsignedConfig[uint64](types.Uint64, 64, false),
		unsignedConfig[uint](types.Uint, strconv.IntSize, false),
		floatConfig[float32](types.Float32, 32),
		floatConfig[float64](types.Float64, 64),
		decimalConfig(),
		{Type: types.KeyCode, DefaultKind: types.EntryKeymap},
	}
	m := make(map[string]*Descriptor, len(configs))
	for _, cfg := range configs {
		m[cfg.Type.Name] = MustNew(cfg)
	}
	return m
}

// Builtin returns the built-in descriptor for t, independent of any
// registry overrides.
func Builtin(t types.Type) (*Descriptor, bool) {
	d, ok := builtins[t.Name]
	return d, ok
}

func stringConfig() Config {
	return Config{
		Type:    types.String,
		Format:  func(v any) string { return v.(string) },
		Parse:   func(s string) (any, error) { return s, nil },
		Accepts: acceptsOf[string],
		Compare: compareOf[string],
	}
}

// boolConfig cycles between true and false and formats in lower case.
func boolConfig() Config {
	return Config{
		Type:        types.Bool,
		DefaultKind: types.EntryCycling,
		Format:      func(v any) string { return strconv.FormatBool(v.(bool)) },
		Parse: func(s string) (any, error) {
			return strconv.ParseBool(strings.TrimSpace(s))
		},
		Accepts: acceptsOf[bool],
		Compare: func(a, b any) int {
			return cmp.Compare(boolRank(a.(bool)), boolRank(b.(bool)))
		},
		DefaultOptions: []any{true, false},
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
