package entry

import "github.com/mesh-intelligence/knobs/pkg/types"

// View is the state a RenderStrategy needs to build a widget for one entry.
// Set routes a raw edit back into the entry; after a rejected edit the
// renderer re-reads Current to restore its display.
type View struct {
	ID         string
	Name       string
	Kind       types.EntryKind
	Options    []string
	Value      string
	Default    string
	HasDefault bool
	Tooltip    string
	Width      int
	NameColor  string
	Static     bool
	Err        error

	Set     func(raw string) error
	Reset   func() error
	Current func() string
}

// Widget is a rendered entry.
type Widget interface {
	// Refresh re-reads the entry and updates the display.
	Refresh()
}

// RenderStrategy turns entries into widgets.
type RenderStrategy interface {
	Render(v View) (Widget, error)
}

// View returns the render state of b under the given id.
func (b *Builder) View(id string) View {
	v := View{
		ID:        id,
		Name:      b.name,
		Kind:      b.Kind(),
		Options:   b.Options(),
		Value:     b.String(),
		Tooltip:   b.tooltip,
		Width:     b.width,
		NameColor: b.nameColor,
		Static:    b.static,
		Err:       b.err,
		Set:       b.SetString,
		Reset:     b.Reset,
		Current:   b.String,
	}
	if b.hasDefault {
		v.Default, v.HasDefault = b.desc.Format(b.def), true
	}
	return v
}
