package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"provel/internal/diag"
	"provel/internal/source"
)

func fixture() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.pv", []byte("fn bad<T>(x: T) {}\n"))
	// "<T>" at offsets 6..9.
	sp := source.Span{File: id, Start: 6, End: 9}

	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.RunGenericParams, sp, "runnable functions cannot have generic params"))
	return bag, fs
}

func TestPrettyPlain(t *testing.T) {
	bag, fs := fixture()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})

	out := buf.String()
	if !strings.Contains(out, "demo.pv:1:7: ERROR RUN5001: runnable functions cannot have generic params") {
		t.Fatalf("header line wrong:\n%s", out)
	}
	if !strings.Contains(out, "fn bad<T>(x: T) {}") {
		t.Fatalf("source context missing:\n%s", out)
	}
	if !strings.Contains(out, "      ^~~") {
		t.Fatalf("underline wrong:\n%s", out)
	}
}

func TestPrettyBasename(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("pkg/sub/deep.pv", []byte("x\n"))
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.RunBadParamCount, source.Span{File: id, Start: 0, End: 1}, "msg"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if !strings.HasPrefix(buf.String(), "deep.pv:1:1:") {
		t.Fatalf("basename mode not applied:\n%s", buf.String())
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.pv", []byte("fn bad<T>(x: T) {}\n"))
	sp := source.Span{File: id, Start: 6, End: 9}

	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.RunGenericParams, sp, "generic params").WithNote(sp, "declared here"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})
	if !strings.Contains(buf.String(), "note: demo.pv:1:7: declared here") {
		t.Fatalf("note missing:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	bag, fs := fixture()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatalf("json render: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(decoded))
	}
	entry := decoded[0]
	if entry["code"] != "RUN5001" || entry["severity"] != "ERROR" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	start, ok := entry["start"].(map[string]any)
	if !ok || start["line"] != float64(1) || start["col"] != float64(7) {
		t.Fatalf("positions missing or wrong: %v", entry["start"])
	}
}
