// Package constraint models the set of acceptable values for a configuration
// entry as a closed variant: no constraint, an enumerated list, or an
// inclusive range. Values are boxed; element comparison is supplied by the
// caller so the package never inspects concrete types.
package constraint

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kind tags the variant held by a Constraint.
type Kind int

// Constraint kinds. A nil *Constraint reports KindNone.
const (
	KindNone Kind = iota
	KindList
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindRange:
		return "range"
	default:
		return "none"
	}
}

// Constructor errors.
var (
	ErrEmptyList     = errors.New("list constraint requires at least one value")
	ErrInvertedRange = errors.New("range constraint requires min <= max")
	ErrIncomparable  = errors.New("range bounds are not comparable")
	ErrNoComparer    = errors.New("constraint requires a comparison function")
)

// EqualFunc reports whether two boxed values are equal.
type EqualFunc func(a, b any) bool

// CompareFunc orders two boxed values. ok is false when either value is not
// of the constrained type.
type CompareFunc func(a, b any) (c int, ok bool)

// Constraint is immutable once constructed. The zero value and nil both
// behave as "no constraint".
type Constraint struct {
	kind    Kind
	values  []any
	min     any
	max     any
	equal   EqualFunc
	compare CompareFunc
}

// NewList returns a list constraint over values in declaration order.
func NewList(values []any, equal EqualFunc) (*Constraint, error) {
	if len(values) == 0 {
		return nil, ErrEmptyList
	}
	if equal == nil {
		return nil, ErrNoComparer
	}
	return &Constraint{kind: KindList, values: slices.Clone(values), equal: equal}, nil
}

// NewRange returns an inclusive range constraint.
func NewRange(min, max any, compare CompareFunc) (*Constraint, error) {
	if compare == nil {
		return nil, ErrNoComparer
	}
	c, ok := compare(min, max)
	if !ok {
		return nil, ErrIncomparable
	}
	if c > 0 {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvertedRange, min, max)
	}
	return &Constraint{kind: KindRange, min: min, max: max, compare: compare}, nil
}

// List returns a list constraint over typed values.
func List[T comparable](values ...T) (*Constraint, error) {
	boxed := make([]any, len(values))
	for i, v := range values {
		boxed[i] = v
	}
	return NewList(boxed, equalOf[T])
}

// Range returns a range constraint over an ordered type.
func Range[T cmp.Ordered](min, max T) (*Constraint, error) {
	return NewRange(min, max, compareOf[T])
}

// MustList is like List but panics on error.
func MustList[T comparable](values ...T) *Constraint {
	c, err := List(values...)
	if err != nil {
		panic(err)
	}
	return c
}

// MustRange is like Range but panics on error.
func MustRange[T cmp.Ordered](min, max T) *Constraint {
	c, err := Range(min, max)
	if err != nil {
		panic(err)
	}
	return c
}

func equalOf[T comparable](a, b any) bool {
	x, ok := a.(T)
	if !ok {
		return false
	}
	y, ok := b.(T)
	return ok && x == y
}

func compareOf[T cmp.Ordered](a, b any) (int, bool) {
	x, ok := a.(T)
	if !ok {
		return 0, false
	}
	y, ok := b.(T)
	if !ok {
		return 0, false
	}
	return cmp.Compare(x, y), true
}

// Kind returns the variant tag.
func (c *Constraint) Kind() Kind {
	if c == nil {
		return KindNone
	}
	return c.kind
}

// IsList reports whether c enumerates its acceptable values.
func (c *Constraint) IsList() bool {
	return c.Kind() == KindList
}

// IsRange reports whether c bounds its acceptable values.
func (c *Constraint) IsRange() bool {
	return c.Kind() == KindRange
}

// ListedValues returns a copy of the enumerated values, or nil when c is not
// a list.
func (c *Constraint) ListedValues() []any {
	if !c.IsList() {
		return nil
	}
	return slices.Clone(c.values)
}

// Bound returns the inclusive bounds of a range constraint.
func (c *Constraint) Bound() (min, max any, ok bool) {
	if !c.IsRange() {
		return nil, nil, false
	}
	return c.min, c.max, true
}

// IsValid reports whether v satisfies c. Every value satisfies no constraint.
func (c *Constraint) IsValid(v any) bool {
	switch c.Kind() {
	case KindList:
		return c.contains(v)
	case KindRange:
		lo, ok := c.compare(v, c.min)
		if !ok || lo < 0 {
			return false
		}
		hi, ok := c.compare(v, c.max)
		return ok && hi <= 0
	default:
		return true
	}
}

// Clamp returns the value c accepts in place of v. A range saturates v to its
// bounds; a list returns v unchanged when it is a member. ok is false when v
// is rejected, either because it is not in the list or because it cannot be
// compared with the range bounds.
func (c *Constraint) Clamp(v any) (any, bool) {
	switch c.Kind() {
	case KindList:
		if c.contains(v) {
			return v, true
		}
		return nil, false
	case KindRange:
		lo, ok := c.compare(v, c.min)
		if !ok {
			return nil, false
		}
		if lo < 0 {
			return c.min, true
		}
		hi, ok := c.compare(v, c.max)
		if !ok {
			return nil, false
		}
		if hi > 0 {
			return c.max, true
		}
		return v, true
	default:
		return v, true
	}
}

func (c *Constraint) contains(v any) bool {
	return slices.ContainsFunc(c.values, func(x any) bool { return c.equal(x, v) })
}

func (c *Constraint) String() string {
	switch c.Kind() {
	case KindList:
		parts := make([]string, len(c.values))
		for i, v := range c.values {
			parts[i] = fmt.Sprint(v)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		return fmt.Sprintf("[%v, %v]", c.min, c.max)
	default:
		return "none"
	}
}
