package runnable

import (
	"provel/internal/diag"
	"provel/internal/sema"
)

// AnalyzeEntryPoints checks every free function carrying @runnable_raw in the
// module against the two-parameter calling convention. All findings are soft:
// they are reported and compilation proceeds. Functions are checked
// independently of each other.
func AnalyzeEntryPoints(db sema.DB, module sema.ModuleID) []diag.Diagnostic {
	rawAttr := db.Strings().Intern(RunnableRawAttr)
	fns, err := db.ModuleFreeFunctions(module)
	if err != nil {
		// The module failed resolution upstream; that is reported elsewhere.
		return nil
	}

	builtins := db.Types().Builtins()
	var diags []diag.Diagnostic
	for _, id := range fns {
		item, ok := db.FunctionItem(id)
		if !ok || !item.HasAttr(rawAttr) {
			continue
		}
		sig, err := db.FunctionSignature(id)
		if err != nil {
			// Signature resolution failures are already reported upstream.
			continue
		}

		if sig.Result != builtins.Unit {
			diags = append(diags, diag.NewError(diag.RunBadReturnType, sig.RetSpan,
				"invalid return type for @runnable_raw function, expected ()"))
		}

		if len(sig.Params) != 2 {
			diags = append(diags, diag.NewError(diag.RunBadParamCount, sig.ParamsSpan,
				"invalid number of params for @runnable_raw function, expected 2"))
			// Positional checks are meaningless without exactly two params.
			continue
		}

		input, output := &sig.Params[0], &sig.Params[1]
		if input.Type != builtins.FeltSpan {
			diags = append(diags, diag.NewError(diag.RunBadInputType, input.Span,
				"invalid first param type for @runnable_raw function, expected Span<felt>"))
		}
		if input.Mutability == sema.MutRef {
			diags = append(diags, diag.NewError(diag.RunBadInputMutability, input.Span,
				"invalid first param mutability for @runnable_raw function, got unexpected ref"))
		}
		if output.Type != builtins.FeltArray {
			diags = append(diags, diag.NewError(diag.RunBadOutputType, output.Span,
				"invalid second param type for @runnable_raw function, expected Array<felt>"))
		}
		if output.Mutability != sema.MutRef {
			diags = append(diags, diag.NewError(diag.RunBadOutputMutability, output.Span,
				"invalid second param mutability for @runnable_raw function, expected ref"))
		}
	}
	return diags
}
