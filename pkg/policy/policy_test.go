package policy

import (
	"context"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/model"
)

// run executes one observer behavior directly against a fresh context and
// returns that context for inspection.
func run(obs *engine.Observer, op engine.Operation, m *model.Model, rec model.Record, sudo bool) *engine.Context {
	handle := &engine.Handle{Tenant: "default", Sudo: sudo}
	oc := engine.NewContext(handle, op, m, rec, 0)
	_ = obs.Execute(context.Background(), oc)
	return oc
}

func accountsModel() *model.Model {
	min := 0.0
	return &model.Model{
		Name:   "accounts",
		Status: model.StatusActive,
		Fields: []string{"id", "email", "balance", "status", "owner", "bio"},
		FieldTypes: map[string]model.FieldType{
			"id":      model.TypeString,
			"email":   model.TypeString,
			"balance": model.TypeFloat,
			"status":  model.TypeString,
			"owner":   model.TypeString,
			"bio":     model.TypeJSON,
		},
		Required:  map[string]bool{"email": true},
		Immutable: map[string]bool{"owner": true},
		SudoOnly:  map[string]bool{"status": true},
		Ranges:    map[string]model.Range{"balance": {Min: &min}},
		Enums:     map[string][]string{"status": {"active", "suspended"}},
		Transforms: map[string]string{
			"email": "lower",
		},
	}
}

func firstCode(oc *engine.Context) string {
	errs := oc.Errors()
	if len(errs) == 0 {
		return ""
	}
	return engine.ErrorCode(errs[0])
}
