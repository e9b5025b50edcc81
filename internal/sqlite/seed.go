// Sample configuration seeded into an empty store.
package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// EntryPointStyle is the enum behind the GUIProperties.EntryPointStyle key.
var EntryPointStyle = types.NewEnum("EntryPointStyle",
	"NoIcon", "Gear", "MapTool", "SelectBox", "System", "ToggleLog")

// seedDefinition describes a key to seed on first startup. Values are given
// in text form and parsed by the key's descriptor; the value doubles as the
// default.
type seedDefinition struct {
	section     string
	key         string
	valueType   types.Type
	value       string
	description string
	list        []string
	bounds      []string
}

// seedDefinitions defines the keys seeded into an empty store.
var seedDefinitions = []seedDefinition{
	{section: "GUIProperties", key: "Width", valueType: types.Int, value: "480"},
	{section: "GUIProperties", key: "Height", valueType: types.Int, value: "640"},
	{
		section:     "GUIProperties",
		key:         "WidthRatio",
		valueType:   types.Float32,
		value:       "0.4",
		description: "The width ratio of the entries to the window.",
		list:        []string{"0.3", "0.35", "0.4", "0.45", "0.5", "0.55", "0.6"},
	},
	{section: "GUIProperties", key: "EntryPointStyle", valueType: EntryPointStyle, value: "MapTool"},
	{section: "TestSection1", key: "TestString", valueType: types.String, value: "A String"},
	{
		section:     "TestSection1",
		key:         "TestInt",
		valueType:   types.Int,
		value:       "123",
		description: "This is a test integer\nwith a newline. ",
	},
	{section: "TestSection2", key: "TestBool", valueType: types.Bool, value: "true"},
	{section: "TestSection2", key: "TestFloat", valueType: types.Float32, value: "1.23"},
	{section: "TestSection2", key: "TestKeyCode", valueType: types.KeyCode, value: "A"},
	{
		section:     "TestSection3",
		key:         "TestIntWithList",
		valueType:   types.Int,
		value:       "2",
		description: "This is a test integer with a list.",
		list:        []string{"-1", "1", "2", "3", "4", "5", "8"},
	},
	{section: "TestSection3", key: "TestIntWithRange", valueType: types.Int, value: "5", bounds: []string{"1", "10"}},
	{
		section:     "TestSection3",
		key:         "TestDecimalWithRange",
		valueType:   types.Decimal,
		value:       "323456700000000.8974583",
		description: "This is a test decimal with a range.",
		bounds:      []string{"-678661239128678.3217242", "1000000000000000"},
	},
	{section: "TestSection3", key: "TestFloatWithRange", valueType: types.Float32, value: "0", bounds: []string{"-10", "10"}},
}

// Seed defines the sample keys when the store holds no definitions and
// persists them. It returns the number of keys defined; a store that already
// has definitions is left untouched.
func (b *Backend) Seed() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM definitions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting definitions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, s := range seedDefinitions {
		def, value, err := b.seedDefinition(s)
		if err != nil {
			return 0, err
		}
		if err := b.defineLocked(def, value); err != nil {
			return 0, fmt.Errorf("seeding %s.%s: %w", s.section, s.key, err)
		}
	}
	if err := b.persistLocked(); err != nil {
		return 0, err
	}
	b.log.Info().Int("definitions", len(seedDefinitions)).Msg("seeded sample configuration")
	return len(seedDefinitions), nil
}

func (b *Backend) seedDefinition(s seedDefinition) (types.Definition, any, error) {
	d, err := b.registry.GetOrCreate(s.valueType)
	if err != nil {
		return types.Definition{}, nil, err
	}
	value, err := d.Parse(s.value)
	if err != nil {
		return types.Definition{}, nil, err
	}

	var c *constraint.Constraint
	switch {
	case s.list != nil:
		c, err = d.ParseList(s.list...)
	case s.bounds != nil:
		c, err = d.ParseRange(s.bounds[0], s.bounds[1])
	}
	if err != nil {
		return types.Definition{}, nil, fmt.Errorf("constraint of %s.%s: %w", s.section, s.key, err)
	}

	return types.Definition{
		Section:     s.section,
		Key:         s.key,
		Type:        s.valueType,
		Default:     value,
		Constraint:  c,
		Description: s.description,
	}, value, nil
}
