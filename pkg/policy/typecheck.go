package policy

import (
	"context"
	"fmt"

	"github.com/structhub-io/structhub/pkg/engine"
)

// DeclaredValueObserver returns the ring-1 observer that enforces per-field
// range and enum constraints and flags fields not declared by the model.
// Undeclared fields are a warning, not an error: externally sourced models
// legitimately carry extra columns.
func DeclaredValueObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "validate-declared-values",
		Ring:       engine.RingValidate,
		Priority:   20,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field, v := range oc.Record {
				if v == nil {
					continue
				}
				if !oc.Model.HasField(field) {
					oc.AddWarning(engine.NewValidationWarning(engine.CodeInvalidValue, field,
						"field is not declared by the model"))
					continue
				}
				checkRange(oc, field, v)
				checkEnum(oc, field, v)
			}
			return nil
		},
	}
}

func checkRange(oc *engine.Context, field string, v any) {
	rng, ok := oc.Model.Ranges[field]
	if !ok {
		return
	}
	n, ok := asFloat(v)
	if !ok {
		oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field,
			fmt.Sprintf("range constraint on non-numeric value %T", v)))
		return
	}
	if rng.Min != nil && n < *rng.Min {
		oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field,
			fmt.Sprintf("value %v below minimum %v", n, *rng.Min)))
	}
	if rng.Max != nil && n > *rng.Max {
		oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field,
			fmt.Sprintf("value %v above maximum %v", n, *rng.Max)))
	}
}

func checkEnum(oc *engine.Context, field string, v any) {
	allowed, ok := oc.Model.Enums[field]
	if !ok {
		return
	}
	s := fmt.Sprintf("%v", v)
	for _, candidate := range allowed {
		if s == candidate {
			return
		}
	}
	oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field,
		fmt.Sprintf("value %q is not one of the allowed values", s)))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
