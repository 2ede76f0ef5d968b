package policy

import (
	"testing"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/model"
)

func TestTransforms(t *testing.T) {
	obs := TransformObserver()

	t.Run("NamedTransformApplied", func(t *testing.T) {
		rec := model.Record{"email": "Mixed.Case@Example.COM"}
		oc := run(obs, engine.OperationCreate, accountsModel(), rec, false)
		if oc.Failed() {
			t.Fatalf("unexpected errors: %v", oc.Errors())
		}
		if rec["email"] != "mixed.case@example.com" {
			t.Fatalf("lower transform not applied: %v", rec["email"])
		}
	})

	t.Run("UnknownTransformFails", func(t *testing.T) {
		m := accountsModel()
		m.Transforms["email"] = "rot13"
		oc := run(obs, engine.OperationCreate, m, model.Record{"email": "x"}, false)
		if firstCode(oc) != engine.CodeBusinessRuleFailed {
			t.Fatalf("expected %s, got %v", engine.CodeBusinessRuleFailed, oc.Errors())
		}
	})

	t.Run("NonStringValueSkipped", func(t *testing.T) {
		rec := model.Record{"email": 42}
		oc := run(obs, engine.OperationCreate, accountsModel(), rec, false)
		if oc.Failed() {
			t.Fatalf("unexpected errors: %v", oc.Errors())
		}
		if rec["email"] != 42 {
			t.Fatal("non-string value must be left untouched")
		}
	})

	t.Run("TransformTable", func(t *testing.T) {
		cases := []struct {
			name string
			in   string
			want string
		}{
			{"trim", "  padded  ", "padded"},
			{"lower", "ABC", "abc"},
			{"upper", "abc", "ABC"},
			{"title", "hello wide world", "Hello Wide World"},
		}
		for _, c := range cases {
			fn, ok := transforms[c.name]
			if !ok {
				t.Fatalf("missing transform %s", c.name)
			}
			if got := fn(c.in); got != c.want {
				t.Fatalf("%s(%q) = %q, want %q", c.name, c.in, got, c.want)
			}
		}
	})
}
