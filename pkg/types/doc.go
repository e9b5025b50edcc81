// Package types defines the value types, render hints, collaborator interfaces
// and standard errors shared by the knobs configuration engine.
//
// A Type names the value type of one configuration entry. Built-in types map
// onto Go primitives (plus decimal.Decimal); enum types carry their members in
// declaration order and box their values as EnumValue. Everything else is
// KindOther and is rejected by descriptor registries with UnsupportedTypeError.
package types
