package engine

import (
	"context"
	"testing"
)

func noop(_ context.Context, _ *Context) error { return nil }

func TestRegistry(t *testing.T) {
	tests := []struct {
		name string
		fn   func(t *testing.T)
	}{
		{"RegisterAndLookup", testRegisterAndLookup},
		{"WildcardMergedInRegistrationOrder", testWildcardMergedInRegistrationOrder},
		{"LookupCopyIsSafeToReorder", testLookupCopyIsSafeToReorder},
		{"InvalidRegistrations", testInvalidRegistrations},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.fn)
	}
}

func testRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("accounts", &Observer{Name: "a", Ring: RingValidate, Execute: noop})
	reg.MustRegister("accounts", &Observer{Name: "b", Ring: RingSecure, Execute: noop})
	reg.MustRegister("orders", &Observer{Name: "c", Ring: RingValidate, Execute: noop})

	if reg.Len() != 3 {
		t.Fatalf("expected 3 registrations, got %d", reg.Len())
	}

	got := reg.GetObservers("accounts", RingValidate)
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("expected [a], got %v", names(got))
	}
	if got := reg.GetObservers("accounts", RingStore); len(got) != 0 {
		t.Fatalf("expected no storage-ring observers, got %v", names(got))
	}
	if got := reg.GetObservers("unknown", RingValidate); len(got) != 0 {
		t.Fatalf("expected no observers for unknown model, got %v", names(got))
	}
}

func testWildcardMergedInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(WildcardModel, &Observer{Name: "w1", Ring: RingValidate, Execute: noop})
	reg.MustRegister("accounts", &Observer{Name: "m1", Ring: RingValidate, Execute: noop})
	reg.MustRegister(WildcardModel, &Observer{Name: "w2", Ring: RingValidate, Execute: noop})

	got := names(reg.GetObservers("accounts", RingValidate))
	want := []string{"w1", "m1", "w2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func testLookupCopyIsSafeToReorder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("accounts", &Observer{Name: "a", Ring: RingValidate, Execute: noop})
	reg.MustRegister("accounts", &Observer{Name: "b", Ring: RingValidate, Execute: noop})

	first := reg.GetObservers("accounts", RingValidate)
	first[0], first[1] = first[1], first[0]

	second := names(reg.GetObservers("accounts", RingValidate))
	if second[0] != "a" || second[1] != "b" {
		t.Fatalf("lookup order must be unaffected by caller reordering, got %v", second)
	}
}

func testInvalidRegistrations(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("m", nil); err == nil {
		t.Fatal("nil observer must be rejected")
	}
	if err := reg.Register("m", &Observer{Ring: RingValidate, Execute: noop}); err == nil {
		t.Fatal("unnamed observer must be rejected")
	}
	if err := reg.Register("m", &Observer{Name: "x", Ring: Ring(10), Execute: noop}); err == nil {
		t.Fatal("out-of-range ring must be rejected")
	}
	if err := reg.Register("m", &Observer{Name: "x", Ring: RingValidate}); err == nil {
		t.Fatal("missing behavior must be rejected")
	}
}

func names(observers []*Observer) []string {
	out := make([]string, len(observers))
	for i, o := range observers {
		out[i] = o.Name
	}
	return out
}
