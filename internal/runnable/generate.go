package runnable

import (
	"strings"

	"provel/internal/ast"
	"provel/internal/diag"
	"provel/internal/plugin"
)

// GenerateEntryPoint synthesizes the flat-buffer wrapper for one @runnable
// free function. Items of any other shape yield an empty result. The output
// is a pure function of the item and metadata: identical inputs produce
// byte-identical text, mappings and diagnostics.
func GenerateEntryPoint(item *ast.Item, meta *plugin.Metadata) plugin.Result {
	fn, ok := item.FreeFn()
	if !ok {
		return plugin.Result{}
	}
	if !fn.HasAttr(meta.Strings.Intern(RunnableAttr)) {
		return plugin.Result{}
	}

	if len(fn.Generics) > 0 {
		// Generic instantiation cannot meet the fixed calling convention.
		return plugin.Result{
			Diagnostics: []diag.Diagnostic{
				diag.NewError(diag.RunGenericParams, fn.GenericsSpan,
					"runnable functions cannot have generic params"),
			},
		}
	}

	name := meta.Strings.MustLookup(fn.Name)
	b := plugin.NewBuilder()

	b.Addf("@%s(%s)\n", ImplicitPrecedenceAttr, strings.Join(ImplicitPrecedence[:], ", "))
	b.Addf("@%s\n", RunnableRawAttr)
	b.Add("fn ")
	b.AddMapped(EntryPrefix+name, fn.NameSpan)
	b.Add("(mut input: Span<felt>, ref output: Array<felt>) {\n")

	// One deserialization per original parameter, in declaration order. Each
	// statement maps back to the parameter it decodes, so a runtime failure
	// is reported against the user's source.
	for idx, param := range fn.Params {
		b.AddMappedf(param.Span,
			"    let %s%d = Serde::deserialize(ref input).expect('failed to deserialize param #%d');\n",
			EntryPrefix, idx, idx)
	}

	// Leftover input means the invoker over-supplied data.
	b.Add("    assert(input.is_empty(), 'input too long for params');\n")

	b.AddMapped("    let __result = "+name+"(\n", fn.NameSpan)
	for idx, param := range fn.Params {
		b.AddMappedf(param.Span, "        %s%d,\n", EntryPrefix, idx)
	}
	b.Add("    );\n")

	serialize := "    Serde::serialize(__result, ref output);\n"
	if fn.HasReturnClause() {
		b.AddMapped(serialize, fn.ReturnSpan)
	} else {
		b.Add(serialize)
	}
	b.Add("}\n")

	content, mappings := b.Build()
	return plugin.Result{
		Unit: &plugin.GeneratedUnit{
			Name:     GeneratedUnitName,
			Content:  content,
			Mappings: mappings,
		},
	}
}
