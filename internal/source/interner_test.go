package source

import "testing"

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()
	a := in.Intern("add")
	b := in.Intern("mul")
	if a == b {
		t.Fatalf("distinct strings got the same ID")
	}
	if again := in.Intern("add"); again != a {
		t.Fatalf("interning twice must be stable: %v != %v", again, a)
	}
	if s := in.MustLookup(b); s != "mul" {
		t.Fatalf("expected mul, got %q", s)
	}
}

func TestInternerEmptyString(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Fatalf("empty string must map to NoStringID, got %v", id)
	}
	if in.Len() != 1 {
		t.Fatalf("fresh interner should hold only the reserved entry")
	}
	if _, ok := in.Lookup(StringID(99)); ok {
		t.Fatalf("lookup of unknown ID must fail")
	}
}
