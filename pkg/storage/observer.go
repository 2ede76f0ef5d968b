package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/engine"
)

// Observer returns the storage-ring observer: logically just another ordered
// step, bound to ring 5 for every operation. It persists against the backend
// carried by the system handle — a transaction-scoped *gorm.DB in the
// default wiring — and never opens or closes storage resources itself.
// Writes issued here are undone only by the caller's enclosing transaction.
func Observer() *engine.Observer {
	return &engine.Observer{
		Name: "storage",
		Ring: engine.RingStore,
		Execute: func(_ context.Context, oc *engine.Context) error {
			db, ok := oc.Handle.Storage.(*gorm.DB)
			if !ok {
				oc.AddError(engine.NewSystemError(engine.CodeStorageFailed,
					"handle carries no storage backend", nil))
				return nil
			}
			store := NewStore(db)
			tenant := oc.Handle.Tenant
			modelName := oc.Model.Name

			switch oc.Operation {
			case engine.OperationCreate:
				id, _ := oc.Record[IDField].(string)
				if id == "" {
					id = uuid.NewString()
					oc.Record[IDField] = id
				}
				if err := store.Create(tenant, modelName, id, oc.Record); err != nil {
					oc.AddError(engine.NewSystemError(engine.CodeStorageFailed, "create failed", err))
				}

			case engine.OperationUpdate:
				id, _ := oc.Record[IDField].(string)
				if id == "" {
					oc.AddError(engine.NewValidationError(engine.CodeRequiredField, IDField,
						"update requires a record id"))
					return nil
				}
				err := store.Update(tenant, modelName, id, oc.Record)
				if errors.Is(err, ErrRecordNotFound) {
					oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, IDField,
						"record does not exist"))
				} else if err != nil {
					oc.AddError(engine.NewSystemError(engine.CodeStorageFailed, "update failed", err))
				}

			case engine.OperationDelete:
				id, _ := oc.Record[IDField].(string)
				if id == "" {
					oc.AddError(engine.NewValidationError(engine.CodeRequiredField, IDField,
						"delete requires a record id"))
					return nil
				}
				err := store.Delete(tenant, modelName, id)
				if errors.Is(err, ErrRecordNotFound) {
					oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, IDField,
						"record does not exist"))
				} else if err != nil {
					oc.AddError(engine.NewSystemError(engine.CodeStorageFailed, "delete failed", err))
				}

			case engine.OperationFind:
				id, _ := oc.Record[IDField].(string)
				if id == "" {
					oc.AddError(engine.NewValidationError(engine.CodeRequiredField, IDField,
						"find requires a record id"))
					return nil
				}
				stored, err := store.Get(tenant, modelName, id)
				if errors.Is(err, ErrRecordNotFound) {
					oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, IDField,
						"record does not exist"))
					return nil
				}
				if err != nil {
					oc.AddError(engine.NewSystemError(engine.CodeStorageFailed, "find failed", err))
					return nil
				}
				// Enrich in place; post-storage rings see stored values.
				for k, v := range stored {
					oc.Record[k] = v
				}

			default:
				oc.AddError(engine.NewSystemError(engine.CodeStorageFailed,
					"unsupported storage operation "+string(oc.Operation), nil))
			}
			return nil
		},
	}
}
