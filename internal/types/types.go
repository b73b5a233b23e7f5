package types

import "provel/internal/source"

// TypeID identifies an interned semantic type. Equality of resolved types is
// TypeID equality.
type TypeID uint32

const NoTypeID TypeID = 0

// Kind classifies a semantic type.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindUnit is the empty tuple type.
	KindUnit
	// KindFelt is the field-element scalar.
	KindFelt
	// KindSpan is a read-only view over a contiguous sequence.
	KindSpan
	// KindArray is a growable owned sequence.
	KindArray
	// KindNamed is any other nominal type the plugin does not interpret.
	KindNamed
)

// Type is the interned representation. Elem is set for Span/Array, Name for
// named types.
type Type struct {
	Kind Kind
	Elem TypeID
	Name source.StringID
}
