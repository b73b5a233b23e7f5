package ast

import "provel/internal/source"

// ItemKind classifies top-level module items. Plugins only interpret free
// functions; everything else is opaque to them.
type ItemKind uint8

const (
	ItemOther ItemKind = iota
	ItemFn
	ItemMethod
	ItemTypeDecl
)

// Item is one top-level module item. Fn is set only for ItemFn and ItemMethod.
type Item struct {
	Kind ItemKind
	Span source.Span
	Fn   *FnItem
}

// FreeFn returns the function payload when the item is a free function.
func (it *Item) FreeFn() (*FnItem, bool) {
	if it == nil || it.Kind != ItemFn || it.Fn == nil {
		return nil, false
	}
	return it.Fn, true
}
