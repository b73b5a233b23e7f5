package sema

import (
	"provel/internal/source"
	"provel/internal/types"
)

// Mutability is the passing mode of a resolved parameter.
type Mutability uint8

const (
	// MutValue is plain by-value passing (including locally `mut` bindings).
	MutValue Mutability = iota
	// MutRef is by-mutable-reference passing (`ref x: T`).
	MutRef
)

func (m Mutability) String() string {
	if m == MutRef {
		return "ref"
	}
	return "value"
}

// Param is one resolved parameter of a function signature.
type Param struct {
	Name       source.StringID
	Type       types.TypeID
	Mutability Mutability
	Span       source.Span
}

// Signature is the resolved signature of a function, as the semantic layer
// answers it. Read-only for analyzers.
type Signature struct {
	Params []Param
	// ParamsSpan covers the parenthesized parameter list.
	ParamsSpan source.Span
	// Result is the resolved return type; the unit type when the declaration
	// has no return clause.
	Result types.TypeID
	// RetSpan anchors return-type diagnostics: the return clause when spelled,
	// otherwise the declaration's own span.
	RetSpan source.Span
}
