package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/engine"
)

// Observer returns the ring-7 tracked-fields observer. After the storage
// ring it appends one trail entry for every tracked field present in the
// record, using the handle's transaction-scoped backend so the trail commits
// and rolls back with the batch.
func Observer() *engine.Observer {
	return &engine.Observer{
		Name:       "audit-tracked-fields",
		Ring:       engine.RingEnrich,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate, engine.OperationDelete},
		Execute: func(_ context.Context, oc *engine.Context) error {
			if len(oc.Model.Tracked) == 0 {
				return nil
			}
			db, ok := oc.Handle.Storage.(*gorm.DB)
			if !ok {
				oc.AddError(engine.NewSystemError(engine.CodeStorageFailed,
					"handle carries no storage backend", nil))
				return nil
			}
			store := NewStore(db)
			recordID, _ := oc.Record["id"].(string)

			for field := range oc.Model.Tracked {
				v, ok := oc.Record[field]
				if !ok {
					continue
				}
				entry := &Entry{
					Tenant:    oc.Handle.Tenant,
					Model:     oc.Model.Name,
					RecordID:  recordID,
					Field:     field,
					Operation: string(oc.Operation),
					Value:     fmt.Sprintf("%v", v),
				}
				if err := store.Append(entry); err != nil {
					oc.AddError(engine.NewSystemError(engine.CodeStorageFailed,
						"audit trail write failed", err))
					return nil
				}
			}
			return nil
		},
	}
}
