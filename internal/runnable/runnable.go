// Package runnable implements the @runnable compiler extension: a syntax
// transform that wraps attributed functions in the flat-buffer entry-point
// calling convention, and a semantic check that verifies @runnable_raw
// signatures against that convention.
package runnable

import "provel/internal/plugin"

const (
	// RunnableAttr is the user-facing marker that activates wrapper generation.
	RunnableAttr = "runnable"
	// RunnableRawAttr marks a function as a flat-buffer entry point. Emitted
	// by the generator, but also recognized when written by hand.
	RunnableRawAttr = "runnable_raw"
	// ImplicitPrecedenceAttr fixes the capability-type order on generated
	// entry points.
	ImplicitPrecedenceAttr = "implicit_precedence"

	// EntryPrefix namespaces every synthesized identifier: the wrapper name
	// and the per-parameter bindings.
	EntryPrefix = "__entry__"

	// GeneratedUnitName names the unit produced for one attributed function.
	GeneratedUnitName = "runnable"
)

// ImplicitPrecedence lists the builtin capability types declared on every
// generated entry point. Both the set and the order are part of the contract
// with downstream code generation.
var ImplicitPrecedence = [8]string{
	"core::pedersen::Pedersen",
	"core::RangeCheck",
	"core::integer::Bitwise",
	"core::ec::EcOp",
	"core::poseidon::Poseidon",
	"core::circuit::RangeCheck96",
	"core::circuit::AddMod",
	"core::circuit::MulMod",
}

// PluginSuite assembles the runnable extension: one generator, one analyzer.
// Registered once at process start.
func PluginSuite() *plugin.Suite {
	s := &plugin.Suite{}
	s.AddGenerator(GenerateEntryPoint, RunnableAttr, RunnableRawAttr)
	s.AddAnalyzer(AnalyzeEntryPoints)
	s.AddExecutableAttr(RunnableRawAttr)
	return s
}
