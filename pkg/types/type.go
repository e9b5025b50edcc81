package types

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Kind classifies a value Type.
type Kind int

// Value kinds. KindOther marks types without a built-in mapping.
const (
	KindOther Kind = iota
	KindString
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint
	KindFloat32
	KindFloat64
	KindDecimal
	KindEnum
)

var kindNames = map[Kind]string{
	KindOther:   "other",
	KindString:  "string",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindInt:     "int",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindUint:    "uint",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindDecimal: "decimal",
	KindEnum:    "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "other"
}

// Type identifies the value type of a configuration entry. Name is the stable
// identifier registries key descriptors by.
type Type struct {
	Name    string
	Kind    Kind
	Members []string // enumerators in declaration order; enum types only
}

// Built-in types.
var (
	String  = Type{Name: "string", Kind: KindString}
	Bool    = Type{Name: "bool", Kind: KindBool}
	Int8    = Type{Name: "int8", Kind: KindInt8}
	Int16   = Type{Name: "int16", Kind: KindInt16}
	Int32   = Type{Name: "int32", Kind: KindInt32}
	Int64   = Type{Name: "int64", Kind: KindInt64}
	Int     = Type{Name: "int", Kind: KindInt}
	Uint8   = Type{Name: "uint8", Kind: KindUint8}
	Uint16  = Type{Name: "uint16", Kind: KindUint16}
	Uint32  = Type{Name: "uint32", Kind: KindUint32}
	Uint64  = Type{Name: "uint64", Kind: KindUint64}
	Uint    = Type{Name: "uint", Kind: KindUint}
	Float32 = Type{Name: "float32", Kind: KindFloat32}
	Float64 = Type{Name: "float64", Kind: KindFloat64}
	Decimal = Type{Name: "decimal", Kind: KindDecimal}
)

// Builtins lists the built-in types in registration order. KeyCode is the
// only built-in enum.
var Builtins = []Type{
	String, Bool,
	Int8, Int16, Int32, Int64, Int,
	Uint8, Uint16, Uint32, Uint64, Uint,
	Float32, Float64, Decimal,
	KeyCode,
}

// BuiltinType returns the built-in Type with the given name.
func BuiltinType(name string) (Type, bool) {
	for _, t := range Builtins {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// NewEnum returns an enum Type. Members keep their declaration order.
func NewEnum(name string, members ...string) Type {
	return Type{Name: name, Kind: KindEnum, Members: slices.Clone(members)}
}

// Other returns a Type the engine has no built-in mapping for.
func Other(name string) Type {
	return Type{Name: name, Kind: KindOther}
}

// IsEnum reports whether t is an enum type.
func (t Type) IsEnum() bool {
	return t.Kind == KindEnum
}

// Ordinal returns the declaration index of the named member, or -1.
func (t Type) Ordinal(name string) int {
	return slices.Index(t.Members, name)
}

// Enumerator returns the enum value for the named member.
func (t Type) Enumerator(name string) (EnumValue, bool) {
	if !t.IsEnum() || t.Ordinal(name) < 0 {
		return EnumValue{}, false
	}
	return EnumValue{Type: t.Name, Name: name}, true
}

// Enumerators returns every member of an enum type as a value.
func (t Type) Enumerators() []EnumValue {
	if !t.IsEnum() {
		return nil
	}
	values := make([]EnumValue, len(t.Members))
	for i, m := range t.Members {
		values[i] = EnumValue{Type: t.Name, Name: m}
	}
	return values
}

func (t Type) String() string {
	return t.Name
}

// EnumValue is one member of an enum Type.
type EnumValue struct {
	Type string
	Name string
}

func (v EnumValue) String() string {
	return v.Name
}

// TypeOf returns the built-in Type of a Go value. Enum values are not
// resolved because their members are not known from the value alone.
func TypeOf(v any) (Type, bool) {
	switch v.(type) {
	case string:
		return String, true
	case bool:
		return Bool, true
	case int8:
		return Int8, true
	case int16:
		return Int16, true
	case int32:
		return Int32, true
	case int64:
		return Int64, true
	case int:
		return Int, true
	case uint8:
		return Uint8, true
	case uint16:
		return Uint16, true
	case uint32:
		return Uint32, true
	case uint64:
		return Uint64, true
	case uint:
		return Uint, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	case decimal.Decimal:
		return Decimal, true
	default:
		return Type{}, false
	}
}
