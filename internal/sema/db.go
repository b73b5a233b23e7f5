package sema

import (
	"fmt"
	"sort"

	"provel/internal/ast"
	"provel/internal/source"
	"provel/internal/types"
)

// ModuleID identifies a module within a DB.
type ModuleID uint32

// FnID identifies a free function within a DB.
type FnID uint32

// DB is the read-only semantic query surface analyzers run against. It is
// supplied by the host pipeline; analyzers request no write access.
type DB interface {
	// Modules lists all known modules in a stable order.
	Modules() []ModuleID
	// ModuleFreeFunctions lists the free functions of a module. The error
	// mirrors upstream resolution failures; analyzers treat it as
	// already-reported and bail out quietly.
	ModuleFreeFunctions(id ModuleID) ([]FnID, error)
	// FunctionItem returns the syntax-level declaration of a function.
	FunctionItem(id FnID) (*ast.FnItem, bool)
	// FunctionSignature resolves a function's signature. An error means
	// resolution failed upstream; analyzers skip such functions.
	FunctionSignature(id FnID) (*Signature, error)
	// Types exposes the semantic type interner.
	Types() *types.Interner
	// Strings exposes the identifier interner shared with the AST.
	Strings() *source.Interner
}

// World is the in-memory DB implementation used by the driver, the manifest
// loader and tests.
type World struct {
	strings *source.Interner
	types   *types.Interner

	modules map[ModuleID]*moduleData
	order   []ModuleID
	nextMod ModuleID

	fns    map[FnID]*fnData
	nextFn FnID
}

type moduleData struct {
	name  string
	items []*ast.Item
	fns   []FnID
	// broken mimics an upstream resolution failure for the whole module.
	broken error
}

type fnData struct {
	item *ast.FnItem
	sig  *Signature
	// sigErr mimics an upstream signature-resolution failure.
	sigErr error
}

// NewWorld creates an empty world sharing the given interners.
func NewWorld(strings *source.Interner, ti *types.Interner) *World {
	return &World{
		strings: strings,
		types:   ti,
		modules: make(map[ModuleID]*moduleData),
		fns:     make(map[FnID]*fnData),
	}
}

// AddModule registers an empty module and returns its ID.
func (w *World) AddModule(name string) ModuleID {
	id := w.nextMod
	w.nextMod++
	w.modules[id] = &moduleData{name: name}
	w.order = append(w.order, id)
	return id
}

// ModuleName returns the registered name of a module.
func (w *World) ModuleName(id ModuleID) string {
	if m, ok := w.modules[id]; ok {
		return m.name
	}
	return ""
}

// AddItem attaches a top-level item to a module. Free functions also receive
// an FnID and become visible to ModuleFreeFunctions.
func (w *World) AddItem(mod ModuleID, item *ast.Item) (FnID, bool) {
	m, ok := w.modules[mod]
	if !ok {
		return 0, false
	}
	m.items = append(m.items, item)
	fn, isFree := item.FreeFn()
	if !isFree {
		return 0, false
	}
	id := w.nextFn
	w.nextFn++
	w.fns[id] = &fnData{item: fn}
	m.fns = append(m.fns, id)
	return id, true
}

// SetSignature records the resolved signature for a function.
func (w *World) SetSignature(id FnID, sig *Signature) {
	if f, ok := w.fns[id]; ok {
		f.sig = sig
	}
}

// SetSignatureError marks a function as failing signature resolution.
func (w *World) SetSignatureError(id FnID, err error) {
	if f, ok := w.fns[id]; ok {
		f.sigErr = err
	}
}

// SetModuleBroken marks a whole module as failing resolution.
func (w *World) SetModuleBroken(id ModuleID, err error) {
	if m, ok := w.modules[id]; ok {
		m.broken = err
	}
}

// Items returns the top-level items of a module in declaration order.
func (w *World) Items(id ModuleID) []*ast.Item {
	if m, ok := w.modules[id]; ok {
		return m.items
	}
	return nil
}

// Modules implements DB.
func (w *World) Modules() []ModuleID {
	out := make([]ModuleID, len(w.order))
	copy(out, w.order)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ModuleFreeFunctions implements DB.
func (w *World) ModuleFreeFunctions(id ModuleID) ([]FnID, error) {
	m, ok := w.modules[id]
	if !ok {
		return nil, fmt.Errorf("unknown module %d", id)
	}
	if m.broken != nil {
		return nil, m.broken
	}
	out := make([]FnID, len(m.fns))
	copy(out, m.fns)
	return out, nil
}

// FunctionItem implements DB.
func (w *World) FunctionItem(id FnID) (*ast.FnItem, bool) {
	f, ok := w.fns[id]
	if !ok {
		return nil, false
	}
	return f.item, true
}

// FunctionSignature implements DB.
func (w *World) FunctionSignature(id FnID) (*Signature, error) {
	f, ok := w.fns[id]
	if !ok {
		return nil, fmt.Errorf("unknown function %d", id)
	}
	if f.sigErr != nil {
		return nil, f.sigErr
	}
	if f.sig == nil {
		return nil, fmt.Errorf("signature of function %d not resolved", id)
	}
	return f.sig, nil
}

// Types implements DB.
func (w *World) Types() *types.Interner {
	return w.types
}

// Strings implements DB.
func (w *World) Strings() *source.Interner {
	return w.strings
}
