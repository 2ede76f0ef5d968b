package policy

import (
	"context"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/fieldcodec"
)

// EncodeObserver returns the ring-4 observer mapping domain values to wire
// values immediately before storage. An encode failure is loud: the record
// fails rather than storing a silently coerced value.
func EncodeObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "codec-encode",
		Ring:       engine.RingEncode,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field, v := range oc.Record {
				if v == nil || !oc.Model.HasField(field) {
					continue
				}
				wire, err := fieldcodec.Encode(oc.Model.TypeOf(field), oc.Model.IsArray(field), v)
				if err != nil {
					oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field, err.Error()))
					continue
				}
				oc.Record[field] = wire
			}
			return nil
		},
	}
}

// DecodeObserver returns the ring-6 observer mapping wire values back to
// domain values immediately after storage, so the enrichment and
// post-processing rings operate on fully typed values.
func DecodeObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "codec-decode",
		Ring:       engine.RingDecode,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate, engine.OperationFind},
		Execute: func(_ context.Context, oc *engine.Context) error {
			for field, v := range oc.Record {
				if v == nil || !oc.Model.HasField(field) {
					continue
				}
				domain, err := fieldcodec.Decode(oc.Model.TypeOf(field), oc.Model.IsArray(field), v)
				if err != nil {
					oc.AddError(engine.NewValidationError(engine.CodeInvalidValue, field, err.Error()))
					continue
				}
				oc.Record[field] = domain
			}
			return nil
		},
	}
}
