package policy

import (
	"context"

	"github.com/structhub-io/structhub/pkg/engine"
)

// ImmutableFieldsObserver returns the ring-2 observer that rejects updates
// touching an immutable field. Elevation does not bypass immutability.
func ImmutableFieldsObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "secure-immutable-fields",
		Ring:       engine.RingSecure,
		Priority:   10,
		Operations: []engine.Operation{engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field := range oc.Model.Immutable {
				if _, present := oc.Record[field]; present {
					oc.AddError(engine.NewSecurityError(engine.CodeImmutableField,
						"immutable field cannot be changed",
						map[string]any{"field": field, "model": oc.Model.Name}))
				}
			}
			return nil
		},
	}
}

// SudoFieldsObserver returns the ring-2 observer that rejects writes to
// sudo-only fields from a non-elevated handle.
func SudoFieldsObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "secure-sudo-fields",
		Ring:       engine.RingSecure,
		Priority:   20,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			if oc.Handle != nil && oc.Handle.Sudo {
				return nil
			}
			for field := range oc.Model.SudoOnly {
				if _, present := oc.Record[field]; present {
					oc.AddError(engine.NewSecurityError(engine.CodePermissionDenied,
						"field requires an elevated handle",
						map[string]any{"field": field, "model": oc.Model.Name}))
				}
			}
			return nil
		},
	}
}

// WritableModelObserver returns the ring-2 observer that rejects mutations
// against frozen or non-active models.
func WritableModelObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "secure-writable-model",
		Ring:       engine.RingSecure,
		Priority:   5,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate, engine.OperationDelete},
		Execute: func(_ context.Context, oc *engine.Context) error {
			if !oc.Model.Writable() {
				oc.AddError(engine.NewSecurityError(engine.CodePermissionDenied,
					"model does not accept mutations",
					map[string]any{"model": oc.Model.Name, "status": string(oc.Model.Status)}))
			}
			return nil
		},
	}
}
