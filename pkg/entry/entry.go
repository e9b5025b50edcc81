// Package entry binds one configuration value to its descriptor and
// constraint. A Builder validates and clamps every write, recovers its
// default, and persists through save and load hooks supplied by the owner.
// Categories group builders in display order and hand them to a
// RenderStrategy.
package entry

import (
	"errors"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// DefaultWidth is the render width of an entry unless set otherwise.
const DefaultWidth = 180

// ErrorColor is the name color of error pseudo-entries.
const ErrorColor = "#FF5555"

// Builder errors.
var (
	ErrReadOnly  = errors.New("entry is read-only")
	ErrNoDefault = errors.New("entry has no default value")
)

// Builder holds the state of one configuration entry. The current value is
// always accepted by the constraint once it has been written through
// SetValue.
type Builder struct {
	name       string
	desc       *descriptor.Descriptor
	value      any
	def        any
	hasDefault bool
	constraint *constraint.Constraint
	kind       types.EntryKind
	width      int
	tooltip    string
	nameColor  string
	onSave     func(any) error
	onLoad     func() (any, error)
	static     bool
	err        error
	changed    bool
}

// Create returns a builder for a value of type typ. The descriptor comes from
// reg (the default registry when nil), created on the fly for enum types.
// Returns *types.UnsupportedTypeError when typ has no descriptor and
// *types.TypeMismatchError when value is not of type typ.
func Create(reg *descriptor.Registry, name string, typ types.Type, value any) (*Builder, error) {
	if reg == nil {
		reg = descriptor.Default()
	}
	d, err := reg.GetOrCreate(typ)
	if err != nil {
		return nil, err
	}
	return CreateWith(name, d, value)
}

// CreateWith returns a builder using an explicit descriptor.
func CreateWith(name string, d *descriptor.Descriptor, value any) (*Builder, error) {
	if !d.Accepts(value) {
		return nil, &types.TypeMismatchError{Type: d.Type().Name, Value: value}
	}
	return &Builder{name: name, desc: d, value: value, width: DefaultWidth}, nil
}

func staticText(name, text string, kind types.EntryKind) *Builder {
	d, _ := descriptor.Builtin(types.String)
	return &Builder{name: name, desc: d, value: text, kind: kind, width: DefaultWidth, static: true}
}

// NewDescription returns a non-interactive entry displaying text.
func NewDescription(text, color string) *Builder {
	b := staticText(text, text, types.EntryDescription)
	b.nameColor = color
	return b
}

// NewError returns a non-interactive entry standing in for a key that could
// not be bound. The tooltip names the kind of err and its message.
func NewError(label string, err error) *Builder {
	b := staticText(label, label+" (Error!)", types.EntryError)
	b.nameColor = ErrorColor
	b.err = err
	if err != nil {
		b.tooltip = types.ErrorKind(err) + ": " + err.Error()
	}
	return b
}

// SetNameColor sets the color the entry name renders in.
func (b *Builder) SetNameColor(color string) *Builder {
	b.nameColor = color
	return b
}

// SetWidth sets the render width.
func (b *Builder) SetWidth(width int) *Builder {
	b.width = width
	return b
}

// SetKind overrides the render kind derived from the type and constraint.
func (b *Builder) SetKind(kind types.EntryKind) *Builder {
	b.kind = kind
	return b
}

// SetTooltip sets the hover text.
func (b *Builder) SetTooltip(tooltip string) *Builder {
	b.tooltip = tooltip
	return b
}

// SetDefault sets the value Reset restores. A nil value or a value of
// another type clears the default.
func (b *Builder) SetDefault(v any) *Builder {
	b.def, b.hasDefault = nil, false
	if b.desc.Accepts(v) {
		b.def, b.hasDefault = v, true
	}
	return b
}

// SetConstraint sets the acceptable values. A current value outside a range
// is clamped into it; a current value missing from a list is kept as loaded
// and rejected on the next write.
func (b *Builder) SetConstraint(c *constraint.Constraint) *Builder {
	b.constraint = c
	if v, ok := c.Clamp(b.value); ok && !b.desc.Equal(v, b.value) {
		b.value = v
		b.changed = true
	}
	return b
}

// SetOnSave sets the hook Save hands the current value to.
func (b *Builder) SetOnSave(fn func(any) error) *Builder {
	b.onSave = fn
	return b
}

// SetOnLoad sets the hook Load reads the persisted value from.
func (b *Builder) SetOnLoad(fn func() (any, error)) *Builder {
	b.onLoad = fn
	return b
}

// Name returns the display name.
func (b *Builder) Name() string { return b.name }

// Descriptor returns the type rules of the entry.
func (b *Builder) Descriptor() *descriptor.Descriptor { return b.desc }

// Constraint returns the acceptable values, or nil.
func (b *Builder) Constraint() *constraint.Constraint { return b.constraint }

// Value returns the current boxed value.
func (b *Builder) Value() any { return b.value }

// String returns the current value in its text form.
func (b *Builder) String() string { return b.desc.Format(b.value) }

// Default returns the default value and whether one is set.
func (b *Builder) Default() (any, bool) { return b.def, b.hasDefault }

// Width returns the display width.
func (b *Builder) Width() int { return b.width }

// Tooltip returns the hover text, or "".
func (b *Builder) Tooltip() string { return b.tooltip }

// NameColor returns the color of the display name, or "".
func (b *Builder) NameColor() string { return b.nameColor }

// Static reports whether the entry is a non-interactive pseudo-entry.
func (b *Builder) Static() bool { return b.static }

// Err returns the failure an error pseudo-entry stands in for.
func (b *Builder) Err() error { return b.err }

// Changed reports whether the value was modified since the last Save or Load.
func (b *Builder) Changed() bool { return b.changed }

// SetValue replaces the current value. The value is clamped by the
// constraint; nothing changes when the clamped value equals the current one.
// Returns *types.TypeMismatchError for a value of another type and
// *types.ValidationError when the constraint rejects it. A failed write
// leaves the entry untouched.
func (b *Builder) SetValue(v any) error {
	if b.static {
		return ErrReadOnly
	}
	if !b.desc.Accepts(v) {
		return &types.TypeMismatchError{Type: b.desc.Type().Name, Value: v}
	}
	clamped, ok := b.constraint.Clamp(v)
	if !ok {
		return b.rejection(v)
	}
	if b.desc.Equal(clamped, b.value) {
		return nil
	}
	b.value = clamped
	b.changed = true
	return nil
}

// SetString parses raw and writes the result through SetValue.
// Returns *types.FormatError when raw does not parse.
func (b *Builder) SetString(raw string) error {
	if b.static {
		return ErrReadOnly
	}
	v, err := b.desc.Parse(raw)
	if err != nil {
		return err
	}
	return b.SetValue(v)
}

func (b *Builder) rejection(v any) error {
	return b.desc.Reject(b.name, b.constraint, v)
}

// Reset restores the default value.
func (b *Builder) Reset() error {
	if !b.hasDefault {
		return ErrNoDefault
	}
	return b.SetValue(b.def)
}

// IsDefault reports whether the current value equals the default.
func (b *Builder) IsDefault() bool {
	return b.hasDefault && b.desc.Equal(b.value, b.def)
}

// Save hands the current value to the save hook.
func (b *Builder) Save() error {
	if b.static || b.onSave == nil {
		return nil
	}
	if err := b.onSave(b.value); err != nil {
		return err
	}
	b.changed = false
	return nil
}

// LoadValue returns the persisted value, or the current value when no load
// hook is set.
func (b *Builder) LoadValue() (any, error) {
	if b.onLoad == nil {
		return b.value, nil
	}
	return b.onLoad()
}

// Load replaces the current value with the persisted one, validating it like
// any other write.
func (b *Builder) Load() error {
	if b.static {
		return nil
	}
	v, err := b.LoadValue()
	if err != nil {
		return err
	}
	if err := b.SetValue(v); err != nil {
		return err
	}
	b.changed = false
	return nil
}

// Dirty reports whether the current value differs from the persisted one.
func (b *Builder) Dirty() bool {
	if b.static {
		return false
	}
	v, err := b.LoadValue()
	if err != nil {
		return true
	}
	return !b.desc.Equal(v, b.value)
}

// Kind returns the render kind: the explicit override, or the kind the
// descriptor derives from the constraint.
func (b *Builder) Kind() types.EntryKind {
	if b.kind != types.EntryUnset {
		return b.kind
	}
	return b.desc.DefaultKind(b.constraint)
}

// Options returns the option set to offer, always including the default.
func (b *Builder) Options() []string {
	if b.static {
		return nil
	}
	if b.hasDefault {
		return b.desc.Options(b.constraint, b.def)
	}
	return b.desc.Options(b.constraint)
}
