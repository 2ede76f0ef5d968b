// Package policy provides the built-in observer set: input validation,
// field-level security, named transforms, cross-field rules, and the
// type-mapping rings around storage. All of them are registered against the
// wildcard model and read their behavior from the model descriptor, so one
// registration covers every table.
package policy

import (
	"context"

	"github.com/structhub-io/structhub/pkg/engine"
)

// RequiredFieldsObserver returns the ring-1 observer that rejects create
// records missing a required field.
func RequiredFieldsObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "validate-required-fields",
		Ring:       engine.RingValidate,
		Priority:   10,
		Operations: []engine.Operation{engine.OperationCreate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field := range oc.Model.Required {
				if !oc.Record.Has(field) {
					oc.AddError(engine.NewValidationError(engine.CodeRequiredField, field,
						"required field is missing"))
				}
			}
			return nil
		},
	}
}
