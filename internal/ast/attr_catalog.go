package ast

import (
	"slices"
	"strings"

	"provel/internal/source"
)

// AttrTargetMask describes a set of item kinds an attribute may be applied to.
type AttrTargetMask uint16

const (
	AttrTargetNone AttrTargetMask = 0
	AttrTargetFn   AttrTargetMask = 1 << iota // top-level functions
	AttrTargetType
	AttrTargetParam
)

// AttrFlag captures special handling rules beyond the applicability matrix.
type AttrFlag uint8

const (
	AttrFlagNone AttrFlag = 0

	// AttrFlagGeneratedOnly marks attributes normally emitted by plugins, not
	// written by hand (hand-written occurrences are still recognized).
	AttrFlagGeneratedOnly AttrFlag = 1 << iota

	// AttrFlagExecutable marks attributes that classify a function as an
	// externally invokable entry point.
	AttrFlagExecutable
)

// AttrSpec describes a language attribute, its targets and special rules.
type AttrSpec struct {
	Name    string
	Targets AttrTargetMask
	Flags   AttrFlag
}

// Allows reports whether the attribute can be applied to the given target bit.
func (spec AttrSpec) Allows(target AttrTargetMask) bool {
	return spec.Targets&target != 0
}

// HasFlag reports whether the spec contains the given flag.
func (spec AttrSpec) HasFlag(flag AttrFlag) bool {
	return spec.Flags&flag != 0
}

var attrRegistry = map[string]AttrSpec{
	"runnable":            {Name: "runnable", Targets: AttrTargetFn},
	"runnable_raw":        {Name: "runnable_raw", Targets: AttrTargetFn, Flags: AttrFlagGeneratedOnly | AttrFlagExecutable},
	"implicit_precedence": {Name: "implicit_precedence", Targets: AttrTargetFn, Flags: AttrFlagGeneratedOnly},
	"inline":              {Name: "inline", Targets: AttrTargetFn},
	"deprecated":          {Name: "deprecated", Targets: AttrTargetFn | AttrTargetType},
	"packed":              {Name: "packed", Targets: AttrTargetType},
}

// LookupAttr returns metadata for the given attribute name (case-insensitive).
func LookupAttr(name string) (AttrSpec, bool) {
	if name == "" {
		return AttrSpec{}, false
	}
	spec, ok := attrRegistry[strings.ToLower(name)]
	return spec, ok
}

// LookupAttrID resolves attribute metadata by string ID using the interner.
func LookupAttrID(interner *source.Interner, id source.StringID) (AttrSpec, bool) {
	if interner == nil || id == source.NoStringID {
		return AttrSpec{}, false
	}
	name, ok := interner.Lookup(id)
	if !ok {
		return AttrSpec{}, false
	}
	return LookupAttr(name)
}

// AttrSpecs returns a stable slice of all registered attribute specifications
// sorted by name.
func AttrSpecs() []AttrSpec {
	names := make([]string, 0, len(attrRegistry))
	for name := range attrRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]AttrSpec, 0, len(names))
	for _, name := range names {
		result = append(result, attrRegistry[name])
	}
	return result
}
