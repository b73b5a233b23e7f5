package driver

import (
	"context"
	"testing"

	"provel/internal/plugin"
	"provel/internal/runnable"
	"provel/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	unit := &plugin.GeneratedUnit{
		Name:    "runnable",
		Content: "fn __entry__f() {}\n",
		Mappings: []plugin.CodeMapping{
			{Generated: plugin.TextRange{Start: 3, End: 14}, Original: source.Span{File: 2, Start: 7, End: 9}},
		},
	}
	key := Digest{1, 2, 3}

	if err := cache.Put(key, newUnitPayload(unit)); err != nil {
		t.Fatalf("put: %v", err)
	}

	var payload UnitPayload
	hit, err := cache.Get(key, &payload)
	if err != nil || !hit {
		t.Fatalf("expected a hit, got hit=%v err=%v", hit, err)
	}
	got := payload.toUnit()
	if got.Content != unit.Content || got.Name != unit.Name {
		t.Fatalf("payload does not round-trip: %+v", got)
	}
	if len(got.Mappings) != 1 || got.Mappings[0] != unit.Mappings[0] {
		t.Fatalf("mappings do not round-trip: %+v", got.Mappings)
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	var payload UnitPayload
	hit, err := cache.Get(Digest{9}, &payload)
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if hit {
		t.Fatalf("unexpected hit")
	}
}

func TestItemDigestSensitivity(t *testing.T) {
	w, strings := testWorld(t)
	mod := w.AddModule("demo")
	addRunnableFn(w, strings, mod, "add", "x")
	addRunnableFn(w, strings, mod, "add", "x", "y")

	items := w.Items(mod)
	d1, ok1 := itemDigest(strings, 0, items[0])
	d2, ok2 := itemDigest(strings, 0, items[1])
	if !ok1 || !ok2 {
		t.Fatalf("free functions must digest")
	}
	if d1 == d2 {
		t.Fatalf("different param lists must not collide")
	}

	// Same item, different generator slot: distinct keys.
	d1b, _ := itemDigest(strings, 1, items[0])
	if d1 == d1b {
		t.Fatalf("generator index must be part of the key")
	}
}

func TestPipelineUsesCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	run := func() *Result {
		w, strings := testWorld(t)
		mod := w.AddModule("demo")
		addRunnableFn(w, strings, mod, "add", "a", "b")
		res, err := RunSuite(context.Background(), runnable.PluginSuite(), w, Options{Cache: cache})
		if err != nil {
			t.Fatalf("pipeline failed: %v", err)
		}
		return res
	}

	cold := run()
	warm := run()
	if len(cold.Units) != 1 || len(warm.Units) != 1 {
		t.Fatalf("both runs must produce one unit")
	}
	if cold.Units[0].Unit.Content != warm.Units[0].Unit.Content {
		t.Fatalf("cached unit must match the generated one")
	}
}
