package runnable

import (
	"errors"
	"testing"

	"provel/internal/ast"
	"provel/internal/diag"
	"provel/internal/sema"
	"provel/internal/source"
	"provel/internal/types"
)

type analyzeFixture struct {
	world   *sema.World
	strings *source.Interner
	ti      *types.Interner
	mod     sema.ModuleID
}

func newFixture() *analyzeFixture {
	strings := source.NewInterner()
	ti := types.NewInterner()
	w := sema.NewWorld(strings, ti)
	return &analyzeFixture{
		world:   w,
		strings: strings,
		ti:      ti,
		mod:     w.AddModule("demo"),
	}
}

// addRaw registers a free function carrying @runnable_raw with the given
// resolved signature parts.
func (f *analyzeFixture) addRaw(name string, params []sema.Param, result types.TypeID) sema.FnID {
	fn := &ast.FnItem{
		Name:  f.strings.Intern(name),
		Attrs: []ast.Attr{{Name: f.strings.Intern(RunnableRawAttr)}},
	}
	id, _ := f.world.AddItem(f.mod, &ast.Item{Kind: ast.ItemFn, Fn: fn})
	f.world.SetSignature(id, &sema.Signature{
		Params:     params,
		ParamsSpan: source.Span{File: 2, Start: 50, End: 90},
		Result:     result,
		RetSpan:    source.Span{File: 2, Start: 91, End: 99},
	})
	return id
}

func (f *analyzeFixture) inputParam(ty types.TypeID, mut sema.Mutability) sema.Param {
	return sema.Param{
		Name:       f.strings.Intern("input"),
		Type:       ty,
		Mutability: mut,
		Span:       source.Span{File: 2, Start: 51, End: 60},
	}
}

func (f *analyzeFixture) outputParam(ty types.TypeID, mut sema.Mutability) sema.Param {
	return sema.Param{
		Name:       f.strings.Intern("output"),
		Type:       ty,
		Mutability: mut,
		Span:       source.Span{File: 2, Start: 62, End: 75},
	}
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestAnalyzeValidEntryPoint(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("handler", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
		f.outputParam(b.FeltArray, sema.MutRef),
	}, b.Unit)

	if diags := AnalyzeEntryPoints(f.world, f.mod); len(diags) != 0 {
		t.Fatalf("conforming entry point must be clean, got %v", codes(diags))
	}
}

func TestAnalyzeIgnoresUnmarked(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	fn := &ast.FnItem{Name: f.strings.Intern("regular")}
	id, _ := f.world.AddItem(f.mod, &ast.Item{Kind: ast.ItemFn, Fn: fn})
	f.world.SetSignature(id, &sema.Signature{Result: b.Felt})

	if diags := AnalyzeEntryPoints(f.world, f.mod); len(diags) != 0 {
		t.Fatalf("functions without @runnable_raw are out of scope, got %v", codes(diags))
	}
}

func TestAnalyzeBadReturnType(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("h", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
		f.outputParam(b.FeltArray, sema.MutRef),
	}, b.Felt)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	if len(diags) != 1 || diags[0].Code != diag.RunBadReturnType {
		t.Fatalf("expected exactly RunBadReturnType, got %v", codes(diags))
	}
	if diags[0].Primary != (source.Span{File: 2, Start: 91, End: 99}) {
		t.Fatalf("return diagnostic anchored at %v", diags[0].Primary)
	}
}

func TestAnalyzeParamCountShortCircuits(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	// Three params, one of them ref Array<felt> in the wrong slot: only the
	// count may be reported.
	f.addRaw("h", []sema.Param{
		f.inputParam(b.Felt, sema.MutValue),
		f.outputParam(b.FeltArray, sema.MutRef),
		f.inputParam(b.Felt, sema.MutValue),
	}, b.Unit)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	if len(diags) != 1 || diags[0].Code != diag.RunBadParamCount {
		t.Fatalf("expected exactly RunBadParamCount, got %v", codes(diags))
	}
	if diags[0].Primary != (source.Span{File: 2, Start: 50, End: 90}) {
		t.Fatalf("count diagnostic anchored at %v, want the param list", diags[0].Primary)
	}
}

func TestAnalyzeReturnCheckSurvivesCountMismatch(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("h", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
	}, b.Felt)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	got := codes(diags)
	if len(got) != 2 || got[0] != diag.RunBadReturnType || got[1] != diag.RunBadParamCount {
		t.Fatalf("expected return + count diagnostics, got %v", got)
	}
}

func TestAnalyzeFirstParamTypeAndMutabilityCooccur(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("h", []sema.Param{
		f.inputParam(b.FeltArray, sema.MutRef), // wrong type AND ref
		f.outputParam(b.FeltArray, sema.MutRef),
	}, b.Unit)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	got := codes(diags)
	if len(got) != 2 || got[0] != diag.RunBadInputType || got[1] != diag.RunBadInputMutability {
		t.Fatalf("expected input type + mutability diagnostics, got %v", got)
	}
	inputSpan := source.Span{File: 2, Start: 51, End: 60}
	for _, d := range diags {
		if d.Primary != inputSpan {
			t.Fatalf("diagnostic %v anchored at %v, want the first param", d.Code, d.Primary)
		}
	}
}

func TestAnalyzeSecondParamChecks(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("h", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
		f.outputParam(b.FeltSpan, sema.MutValue), // wrong type AND by value
	}, b.Unit)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	got := codes(diags)
	if len(got) != 2 || got[0] != diag.RunBadOutputType || got[1] != diag.RunBadOutputMutability {
		t.Fatalf("expected output type + mutability diagnostics, got %v", got)
	}
}

func TestAnalyzeSkipsUnresolvedSignatures(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	fn := &ast.FnItem{
		Name:  f.strings.Intern("broken"),
		Attrs: []ast.Attr{{Name: f.strings.Intern(RunnableRawAttr)}},
	}
	id, _ := f.world.AddItem(f.mod, &ast.Item{Kind: ast.ItemFn, Fn: fn})
	f.world.SetSignatureError(id, errors.New("resolution failed"))

	// A healthy sibling must still be checked.
	f.addRaw("h", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
		f.outputParam(b.FeltArray, sema.MutRef),
	}, b.Felt)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	if len(diags) != 1 || diags[0].Code != diag.RunBadReturnType {
		t.Fatalf("expected only the sibling's diagnostic, got %v", codes(diags))
	}
}

func TestAnalyzeBrokenModule(t *testing.T) {
	f := newFixture()
	f.world.SetModuleBroken(f.mod, errors.New("module failed"))
	if diags := AnalyzeEntryPoints(f.world, f.mod); diags != nil {
		t.Fatalf("broken module must yield no diagnostics, got %v", codes(diags))
	}
}

func TestAnalyzeIndependentFunctions(t *testing.T) {
	f := newFixture()
	b := f.ti.Builtins()
	f.addRaw("first", []sema.Param{f.inputParam(b.Felt, sema.MutValue)}, b.Unit)
	f.addRaw("second", []sema.Param{
		f.inputParam(b.FeltSpan, sema.MutValue),
		f.outputParam(b.FeltArray, sema.MutRef),
	}, b.Unit)

	diags := AnalyzeEntryPoints(f.world, f.mod)
	if len(diags) != 1 || diags[0].Code != diag.RunBadParamCount {
		t.Fatalf("a failing function must not affect its siblings, got %v", codes(diags))
	}
}
