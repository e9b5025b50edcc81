// Package descriptor maps value types to the rules an editable entry needs:
// how a value is formatted and parsed, how values order, which options to
// offer without a constraint, and how a list or range constraint expands into
// a discrete option set.
//
// A Descriptor is built by New from a Config and is immutable afterwards.
// Registration in a Registry is a separate, explicit step.
package descriptor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Resolution is the number of intervals a wide numeric range is divided into
// when it is discretized; expansion yields Resolution+1 samples.
const Resolution = 100

// Descriptor construction errors.
var (
	ErrNoFormat  = errors.New("descriptor requires a Format function")
	ErrNoParse   = errors.New("descriptor requires a Parse function")
	ErrNoAccepts = errors.New("descriptor requires an Accepts function")
	ErrUnordered = errors.New("type has no natural order")
)

// Config is the input to New. Enum types may leave every function nil and
// receive structural defaults; other types must supply Format, Parse and
// Accepts.
type Config struct {
	Type types.Type

	// DefaultKind is the render kind used when no constraint applies.
	// Defaults to EntryDropdown for enums and EntryInput otherwise.
	DefaultKind types.EntryKind

	// Format and Parse convert between values and their invariant text form.
	Format func(v any) string
	Parse  func(s string) (any, error)

	// Accepts reports whether a boxed value is an instance of Type.
	Accepts func(v any) bool

	// Compare orders two accepted values. Nil marks an unordered type.
	Compare func(a, b any) int

	// Equal compares two accepted values. Defaults to ==.
	Equal func(a, b any) bool

	// DefaultOptions are offered when no constraint yields options. Nil
	// means free-form entry.
	DefaultOptions []any

	// ListOptions expands the values of a list constraint. Defaults to the
	// values unchanged.
	ListOptions func(listed []any) []any

	// RangeOptions discretizes a range constraint. Nil means the type does
	// not support range expansion.
	RangeOptions func(min, max any) []any
}

// Descriptor holds the type-specific rules for one value type.
type Descriptor struct {
	cfg Config
}

// New builds a Descriptor from cfg.
func New(cfg Config) (*Descriptor, error) {
	if cfg.Type.IsEnum() {
		applyEnumDefaults(&cfg)
	}
	switch {
	case cfg.Format == nil:
		return nil, fmt.Errorf("%s: %w", cfg.Type.Name, ErrNoFormat)
	case cfg.Parse == nil:
		return nil, fmt.Errorf("%s: %w", cfg.Type.Name, ErrNoParse)
	case cfg.Accepts == nil:
		return nil, fmt.Errorf("%s: %w", cfg.Type.Name, ErrNoAccepts)
	}
	if cfg.DefaultKind == types.EntryUnset {
		cfg.DefaultKind = types.EntryInput
	}
	if cfg.Equal == nil {
		cfg.Equal = func(a, b any) bool { return a == b }
	}
	if cfg.ListOptions == nil {
		cfg.ListOptions = func(listed []any) []any { return listed }
	}
	cfg.DefaultOptions = slices.Clone(cfg.DefaultOptions)
	return &Descriptor{cfg: cfg}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) *Descriptor {
	d, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// applyEnumDefaults fills the structural rules of an enum type: values
// format as their member name, parse by member name, order by declaration
// and default to offering every member.
func applyEnumDefaults(cfg *Config) {
	t := cfg.Type
	if cfg.DefaultKind == types.EntryUnset {
		cfg.DefaultKind = types.EntryDropdown
	}
	if cfg.Accepts == nil {
		cfg.Accepts = func(v any) bool {
			ev, ok := v.(types.EnumValue)
			return ok && ev.Type == t.Name && t.Ordinal(ev.Name) >= 0
		}
	}
	if cfg.Format == nil {
		cfg.Format = func(v any) string { return v.(types.EnumValue).Name }
	}
	if cfg.Parse == nil {
		cfg.Parse = func(s string) (any, error) {
			v, ok := t.Enumerator(s)
			if !ok {
				return nil, fmt.Errorf("%q is not a member of %s", s, t.Name)
			}
			return v, nil
		}
	}
	if cfg.Compare == nil {
		cfg.Compare = func(a, b any) int {
			return t.Ordinal(a.(types.EnumValue).Name) - t.Ordinal(b.(types.EnumValue).Name)
		}
	}
	if cfg.DefaultOptions == nil {
		for _, v := range t.Enumerators() {
			cfg.DefaultOptions = append(cfg.DefaultOptions, v)
		}
	}
}

// Type returns the described type.
func (d *Descriptor) Type() types.Type {
	return d.cfg.Type
}

// Accepts reports whether v is an instance of the described type.
func (d *Descriptor) Accepts(v any) bool {
	return v != nil && d.cfg.Accepts(v)
}

// Format returns the invariant text form of v. Values of another type are
// printed with their default format.
func (d *Descriptor) Format(v any) string {
	if !d.Accepts(v) {
		return fmt.Sprint(v)
	}
	return d.cfg.Format(v)
}

// Parse converts s into a value of the described type.
// Returns a *types.FormatError when s is malformed.
func (d *Descriptor) Parse(s string) (any, error) {
	v, err := d.cfg.Parse(s)
	if err != nil {
		return nil, &types.FormatError{Type: d.cfg.Type.Name, Input: s, Err: err}
	}
	return v, nil
}

// Equal reports whether a and b are equal values of the described type.
func (d *Descriptor) Equal(a, b any) bool {
	if !d.Accepts(a) || !d.Accepts(b) {
		return false
	}
	return d.cfg.Equal(a, b)
}

// Compare orders a and b. ok is false when the type is unordered or either
// value is of another type.
func (d *Descriptor) Compare(a, b any) (c int, ok bool) {
	if d.cfg.Compare == nil || !d.Accepts(a) || !d.Accepts(b) {
		return 0, false
	}
	return d.cfg.Compare(a, b), true
}

// Ordered reports whether the type has a natural order.
func (d *Descriptor) Ordered() bool {
	return d.cfg.Compare != nil
}

// SupportsRange reports whether range constraints expand into options.
func (d *Descriptor) SupportsRange() bool {
	return d.cfg.RangeOptions != nil
}

// DefaultKind resolves the render kind for an entry constrained by c: a list
// renders as a dropdown, an expandable range as a slider, anything else as
// the type's own default kind.
func (d *Descriptor) DefaultKind(c *constraint.Constraint) types.EntryKind {
	switch {
	case c.IsList():
		return types.EntryDropdown
	case c.IsRange() && d.SupportsRange():
		return types.EntrySlider
	default:
		return d.cfg.DefaultKind
	}
}

// DefaultOptions returns the formatted unconstrained options, or nil for
// free-form types.
func (d *Descriptor) DefaultOptions() []string {
	return d.formatAll(d.cfg.DefaultOptions)
}

func (d *Descriptor) formatAll(values []any) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = d.Format(v)
	}
	return out
}

// ListConstraint builds a list constraint over boxed values of the type.
func (d *Descriptor) ListConstraint(values ...any) (*constraint.Constraint, error) {
	for _, v := range values {
		if !d.Accepts(v) {
			return nil, &types.TypeMismatchError{Type: d.cfg.Type.Name, Value: v}
		}
	}
	return constraint.NewList(values, d.Equal)
}

// RangeConstraint builds an inclusive range constraint over boxed values.
func (d *Descriptor) RangeConstraint(min, max any) (*constraint.Constraint, error) {
	if !d.Ordered() {
		return nil, fmt.Errorf("%s: %w", d.cfg.Type.Name, ErrUnordered)
	}
	for _, v := range []any{min, max} {
		if !d.Accepts(v) {
			return nil, &types.TypeMismatchError{Type: d.cfg.Type.Name, Value: v}
		}
	}
	return constraint.NewRange(min, max, d.Compare)
}

// ParseList builds a list constraint from serialized values.
func (d *Descriptor) ParseList(raw ...string) (*constraint.Constraint, error) {
	values := make([]any, len(raw))
	for i, s := range raw {
		v, err := d.Parse(s)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return d.ListConstraint(values...)
}

// ParseRange builds a range constraint from serialized bounds.
func (d *Descriptor) ParseRange(min, max string) (*constraint.Constraint, error) {
	lo, err := d.Parse(min)
	if err != nil {
		return nil, err
	}
	hi, err := d.Parse(max)
	if err != nil {
		return nil, err
	}
	return d.RangeConstraint(lo, hi)
}

func (d *Descriptor) String() string {
	return "descriptor(" + d.cfg.Type.Name + ")"
}

// Reject describes why c rejects v as a *types.ValidationError carrying the
// allowed options or bound in text form. entry names the rejecting entry.
func (d *Descriptor) Reject(entry string, c *constraint.Constraint, v any) *types.ValidationError {
	verr := &types.ValidationError{Entry: entry, Value: d.Format(v)}
	if listed := c.ListedValues(); listed != nil {
		verr.Options = d.formatAll(listed)
	} else if lo, hi, ok := c.Bound(); ok {
		verr.Min, verr.Max, verr.Bounded = d.Format(lo), d.Format(hi), true
	}
	return verr
}
