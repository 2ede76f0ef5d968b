package policy

import (
	"context"
	"strings"

	"github.com/structhub-io/structhub/pkg/engine"
)

// transforms is the named transform table. A model binds a field to a
// transform by name; unknown names fail the record rather than being
// silently skipped.
var transforms = map[string]func(string) string{
	"trim":  strings.TrimSpace,
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"title": func(s string) string {
		words := strings.Fields(s)
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		return strings.Join(words, " ")
	},
}

// TransformObserver returns the ring-3 observer applying the model's named
// per-field transforms to string values before storage.
func TransformObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "business-field-transforms",
		Ring:       engine.RingBusiness,
		Priority:   10,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field, name := range oc.Model.Transforms {
				v, ok := oc.Record[field]
				if !ok || v == nil {
					continue
				}
				s, ok := v.(string)
				if !ok {
					continue
				}
				fn, ok := transforms[name]
				if !ok {
					oc.AddError(engine.NewBusinessLogicError(engine.CodeBusinessRuleFailed,
						"unknown transform "+name,
						map[string]any{"field": field, "transform": name}))
					continue
				}
				oc.Record[field] = fn(s)
			}
			return nil
		},
	}
}
