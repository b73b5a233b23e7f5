package sema

import (
	"strings"

	"provel/internal/source"
	"provel/internal/types"
)

// ResolveTypeText maps surface type syntax to a semantic TypeID. Only the
// shapes the calling convention cares about are interpreted structurally;
// anything else becomes a nominal type.
func ResolveTypeText(ti *types.Interner, interner *source.Interner, text string) types.TypeID {
	text = strings.TrimSpace(text)
	switch text {
	case "", "()":
		return ti.Builtins().Unit
	case "felt":
		return ti.Builtins().Felt
	}
	if inner, ok := genericArg(text, "Span"); ok {
		return ti.RegisterSpan(ResolveTypeText(ti, interner, inner))
	}
	if inner, ok := genericArg(text, "Array"); ok {
		return ti.RegisterArray(ResolveTypeText(ti, interner, inner))
	}
	return ti.RegisterNamed(interner.Intern(text))
}

// genericArg extracts T from "head<T>".
func genericArg(text, head string) (string, bool) {
	if !strings.HasPrefix(text, head+"<") || !strings.HasSuffix(text, ">") {
		return "", false
	}
	return text[len(head)+1 : len(text)-1], true
}
