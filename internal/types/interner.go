package types

import (
	"fmt"

	"provel/internal/source"
)

// Builtins carries the TypeIDs every checker needs without lookups.
type Builtins struct {
	Unit      TypeID
	Felt      TypeID
	FeltSpan  TypeID // Span<felt>
	FeltArray TypeID // Array<felt>
}

// Interner deduplicates semantic types. Index 0 is reserved for NoTypeID.
type Interner struct {
	types    []Type
	builtins Builtins
}

// NewInterner creates an interner with the builtin types pre-registered.
func NewInterner() *Interner {
	in := &Interner{
		types: []Type{{Kind: KindInvalid}},
	}
	in.builtins = Builtins{
		Unit:      in.internRaw(Type{Kind: KindUnit}),
		Felt:      in.internRaw(Type{Kind: KindFelt}),
		FeltSpan:  0,
		FeltArray: 0,
	}
	in.builtins.FeltSpan = in.RegisterSpan(in.builtins.Felt)
	in.builtins.FeltArray = in.RegisterArray(in.builtins.Felt)
	return in
}

// Builtins returns the pre-registered builtin IDs.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Lookup returns the type for id, or (zero, false) for an invalid ID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// RegisterSpan creates or finds Span<elem>.
func (in *Interner) RegisterSpan(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindSpan, Elem: elem})
}

// RegisterArray creates or finds Array<elem>.
func (in *Interner) RegisterArray(elem TypeID) TypeID {
	return in.internRaw(Type{Kind: KindArray, Elem: elem})
}

// RegisterNamed creates or finds a nominal type by interned name.
func (in *Interner) RegisterNamed(name source.StringID) TypeID {
	return in.internRaw(Type{Kind: KindNamed, Name: name})
}

func (in *Interner) internRaw(tt Type) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		if in.types[id] == tt {
			return id
		}
	}
	id := TypeID(len(in.types)) //nolint:gosec // type counts stay tiny
	in.types = append(in.types, tt)
	return id
}

// Label renders a type for diagnostics, resolving names via strings.
func (in *Interner) Label(strings *source.Interner, id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindFelt:
		return "felt"
	case KindSpan:
		return fmt.Sprintf("Span<%s>", in.Label(strings, tt.Elem))
	case KindArray:
		return fmt.Sprintf("Array<%s>", in.Label(strings, tt.Elem))
	case KindNamed:
		if strings != nil {
			if s, ok := strings.Lookup(tt.Name); ok && s != "" {
				return s
			}
		}
		return "<named>"
	}
	return "<invalid>"
}
