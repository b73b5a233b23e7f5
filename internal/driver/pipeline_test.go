package driver

import (
	"context"
	"testing"

	"provel/internal/ast"
	"provel/internal/diag"
	"provel/internal/plugin"
	"provel/internal/runnable"
	"provel/internal/sema"
	"provel/internal/source"
	"provel/internal/types"
)

func testWorld(t *testing.T) (*sema.World, *source.Interner) {
	t.Helper()
	strings := source.NewInterner()
	ti := types.NewInterner()
	return sema.NewWorld(strings, ti), strings
}

func addRunnableFn(w *sema.World, strings *source.Interner, mod sema.ModuleID, name string, params ...string) *ast.FnItem {
	fn := &ast.FnItem{
		Name:     strings.Intern(name),
		NameSpan: source.Span{File: 1, Start: 3, End: 3 + uint32(len(name))},
		Span:     source.Span{File: 1, Start: 0, End: 100},
		Attrs:    []ast.Attr{{Name: strings.Intern(runnable.RunnableAttr)}},
	}
	for i, p := range params {
		off := 20 + uint32(i)*10 //nolint:gosec // test offsets
		fn.Params = append(fn.Params, ast.Param{
			Name:     strings.Intern(p),
			TypeText: strings.Intern("felt"),
			Span:     source.Span{File: 1, Start: off, End: off + 6},
		})
	}
	w.AddItem(mod, &ast.Item{Kind: ast.ItemFn, Span: fn.Span, Fn: fn})
	return fn
}

func TestRunSuiteGeneratesUnits(t *testing.T) {
	w, strings := testWorld(t)
	mod := w.AddModule("demo")
	addRunnableFn(w, strings, mod, "add", "a", "b")

	res, err := RunSuite(context.Background(), runnable.PluginSuite(), w, Options{})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if len(res.Units) != 1 {
		t.Fatalf("expected 1 generated unit, got %d", len(res.Units))
	}
	u := res.Units[0]
	if u.FnName != "add" || u.Module != mod {
		t.Fatalf("unit attribution wrong: %+v", u)
	}
	if u.Unit.Name != runnable.GeneratedUnitName {
		t.Fatalf("unit name %q", u.Unit.Name)
	}
	if res.Bag.HasErrors() {
		t.Fatalf("clean input must produce no errors: %v", res.Bag.Items())
	}
}

func TestRunSuiteCollectsAnalyzerDiagnostics(t *testing.T) {
	w, strings := testWorld(t)
	ti := w.Types()
	mod := w.AddModule("demo")

	fn := &ast.FnItem{
		Name:  strings.Intern("bad_entry"),
		Attrs: []ast.Attr{{Name: strings.Intern(runnable.RunnableRawAttr)}},
	}
	id, _ := w.AddItem(mod, &ast.Item{Kind: ast.ItemFn, Fn: fn})
	w.SetSignature(id, &sema.Signature{
		Params:     nil,
		ParamsSpan: source.Span{File: 1, Start: 10, End: 12},
		Result:     ti.Builtins().Unit,
		RetSpan:    source.Span{File: 1, Start: 13, End: 13},
	})

	res, err := RunSuite(context.Background(), runnable.PluginSuite(), w, Options{})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.RunBadParamCount {
		t.Fatalf("expected one RunBadParamCount, got %v", items)
	}
}

func TestRunSuiteDeterministicAcrossParallelism(t *testing.T) {
	build := func(jobs int) *Result {
		w, strings := testWorld(t)
		for m := 0; m < 4; m++ {
			mod := w.AddModule(string(rune('a' + m)))
			addRunnableFn(w, strings, mod, "f", "x")
			addRunnableFn(w, strings, mod, "g")
		}
		res, err := RunSuite(context.Background(), runnable.PluginSuite(), w, Options{Jobs: jobs})
		if err != nil {
			t.Fatalf("pipeline failed: %v", err)
		}
		return res
	}

	serial := build(1)
	parallel := build(8)
	if len(serial.Units) != len(parallel.Units) {
		t.Fatalf("unit counts differ: %d vs %d", len(serial.Units), len(parallel.Units))
	}
	for i := range serial.Units {
		if serial.Units[i].Unit.Content != parallel.Units[i].Unit.Content {
			t.Fatalf("unit %d differs between serial and parallel runs", i)
		}
		if serial.Units[i].Module != parallel.Units[i].Module {
			t.Fatalf("unit %d module order differs", i)
		}
	}
}

func TestRunSuiteKeepsManyDiagnosticsPerModule(t *testing.T) {
	w, _ := testWorld(t)
	w.AddModule("noisy")

	const produced = 150
	suite := &plugin.Suite{}
	suite.AddAnalyzer(func(db sema.DB, module sema.ModuleID) []diag.Diagnostic {
		out := make([]diag.Diagnostic, 0, produced)
		for i := 0; i < produced; i++ {
			out = append(out, diag.NewError(diag.RunBadReturnType,
				source.Span{File: 1, Start: uint32(i), End: uint32(i) + 1}, //nolint:gosec // test offsets
				"entry point must not return a value"))
		}
		return out
	})

	res, err := RunSuite(context.Background(), suite, w, Options{MaxDiagnostics: 500})
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if res.Bag.Len() != produced {
		t.Fatalf("expected all %d diagnostics retained, got %d", produced, res.Bag.Len())
	}
}

func TestRunSuiteCancelled(t *testing.T) {
	w, strings := testWorld(t)
	mod := w.AddModule("demo")
	addRunnableFn(w, strings, mod, "add", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunSuite(ctx, runnable.PluginSuite(), w, Options{}); err == nil {
		t.Fatalf("cancelled context must surface an error")
	}
}
