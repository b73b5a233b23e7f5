// Package plugin defines the statically-typed extension points of the
// compilation pipeline: syntax-level code generators and semantic analyzers.
// Both kinds are pure functions of their inputs; the driver may invoke them
// concurrently and memoize their results.
package plugin

import (
	"provel/internal/ast"
	"provel/internal/diag"
	"provel/internal/sema"
	"provel/internal/source"
)

// Metadata is the host-provided context passed to generators.
type Metadata struct {
	// Strings is the identifier interner shared with the AST being walked.
	Strings *source.Interner
}

// TextRange is a half-open byte range inside generated text.
type TextRange struct {
	Start uint32
	End   uint32
}

// CodeMapping ties a range of generated text back to the original source
// construct responsible for it. Mappings are kept in emission order.
type CodeMapping struct {
	Generated TextRange
	Original  source.Span
}

// GeneratedUnit is the synthesized source produced for one item: a name, the
// text body and the ordered position mappings. Immutable after construction.
type GeneratedUnit struct {
	Name     string
	Content  string
	Mappings []CodeMapping
}

// MapToOriginal finds the original span for an offset into the generated
// text, preferring the most specific (shortest) covering mapping.
func (u *GeneratedUnit) MapToOriginal(off uint32) (source.Span, bool) {
	var best *CodeMapping
	for i := range u.Mappings {
		m := &u.Mappings[i]
		if off < m.Generated.Start || off >= m.Generated.End {
			continue
		}
		if best == nil || m.Generated.End-m.Generated.Start < best.Generated.End-best.Generated.Start {
			best = m
		}
	}
	if best == nil {
		return source.Span{}, false
	}
	return best.Original, true
}

// Result is what one generator invocation returns for one item.
type Result struct {
	// Unit is nil when the generator did not fire or bailed out.
	Unit *GeneratedUnit
	// Diagnostics collected during generation; the caller merges them.
	Diagnostics []diag.Diagnostic
	// RemoveOriginal asks the host to drop the original item from the
	// compilation.
	RemoveOriginal bool
}

// GenerateFunc is a syntax-level transform: one module item in, an optional
// generated unit plus diagnostics out.
type GenerateFunc func(item *ast.Item, meta *Metadata) Result

// AnalyzeFunc is a semantic check pass over one module.
type AnalyzeFunc func(db sema.DB, module sema.ModuleID) []diag.Diagnostic

// Suite is an explicit registry of transforms and checks, assembled once at
// process start and handed to the driver.
type Suite struct {
	Generators []GenerateFunc
	Analyzers  []AnalyzeFunc

	// DeclaredAttrs lists attribute names the suite's generators consume.
	DeclaredAttrs []string
	// ExecutableAttrs lists attribute names that classify a function as an
	// externally invokable entry point.
	ExecutableAttrs []string
}

// AddGenerator appends a generator and returns the suite for chaining.
func (s *Suite) AddGenerator(g GenerateFunc, declaredAttrs ...string) *Suite {
	s.Generators = append(s.Generators, g)
	s.DeclaredAttrs = append(s.DeclaredAttrs, declaredAttrs...)
	return s
}

// AddAnalyzer appends an analyzer and returns the suite for chaining.
func (s *Suite) AddAnalyzer(a AnalyzeFunc) *Suite {
	s.Analyzers = append(s.Analyzers, a)
	return s
}

// AddExecutableAttr registers an executable-classifying attribute name.
func (s *Suite) AddExecutableAttr(name string) *Suite {
	s.ExecutableAttrs = append(s.ExecutableAttrs, name)
	return s
}
