package macroclient

import "testing"

func TestStatusStrings(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusStarting, "starting"},
		{StatusReady, "ready"},
		{StatusCrashed, "crashed"},
		{Status(42), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.status.String(); got != tc.want {
			t.Fatalf("%d: expected %q, got %q", tc.status, tc.want, got)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	if !StatusPending.IsPending() || StatusReady.IsPending() {
		t.Fatalf("IsPending wrong")
	}
	if !StatusReady.Usable() {
		t.Fatalf("ready must be usable")
	}
	for _, s := range []Status{StatusPending, StatusStarting, StatusCrashed} {
		if s.Usable() {
			t.Fatalf("%s must not be usable", s)
		}
	}
}
