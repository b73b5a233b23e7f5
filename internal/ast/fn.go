package ast

import "provel/internal/source"

// Param is one formal parameter of a function declaration.
type Param struct {
	Name source.StringID
	// TypeText is the surface syntax of the parameter type, interned.
	TypeText source.StringID
	// Ref marks by-mutable-reference passing (`ref x: T`).
	Ref  bool
	Span source.Span
}

// TypeParam is one generic parameter.
type TypeParam struct {
	Name source.StringID
	Span source.Span
}

// FnItem is a function declaration as the plugin layer sees it: name, ordered
// parameters, optional return clause, generic list and attached attributes.
type FnItem struct {
	Name     source.StringID
	NameSpan source.Span

	Params []Param
	// ParamsSpan covers the parenthesized parameter list.
	ParamsSpan source.Span

	Generics []TypeParam
	// GenericsSpan covers the `<...>` list; zero when Generics is empty.
	GenericsSpan source.Span

	// ReturnText is the surface syntax of the return type; NoStringID when the
	// declaration has no return clause.
	ReturnText source.StringID
	ReturnSpan source.Span

	Attrs []Attr

	Span source.Span
}

// HasReturnClause reports whether the declaration spells a return type.
func (fn *FnItem) HasReturnClause() bool {
	return fn.ReturnText != source.NoStringID
}

// HasAttr is the tag-set membership test used for attribute detection.
func (fn *FnItem) HasAttr(name source.StringID) bool {
	if name == source.NoStringID {
		return false
	}
	for i := range fn.Attrs {
		if fn.Attrs[i].Name == name {
			return true
		}
	}
	return false
}
