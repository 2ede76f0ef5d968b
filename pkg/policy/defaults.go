package policy

import (
	"github.com/structhub-io/structhub/pkg/audit"
	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/storage"
)

// RegisterDefaults registers the built-in observer set against the wildcard
// model: validation, field security, transforms, cross-field rules, the
// type-mapping rings, the storage ring, and the tracked-field audit trail.
// Intended for composition-root wiring at startup.
func RegisterDefaults(reg *engine.Registry) {
	reg.MustRegister(engine.WildcardModel, RequiredFieldsObserver())
	reg.MustRegister(engine.WildcardModel, DeclaredValueObserver())
	reg.MustRegister(engine.WildcardModel, WritableModelObserver())
	reg.MustRegister(engine.WildcardModel, ImmutableFieldsObserver())
	reg.MustRegister(engine.WildcardModel, SudoFieldsObserver())
	reg.MustRegister(engine.WildcardModel, TransformObserver())
	reg.MustRegister(engine.WildcardModel, RulesObserver())
	reg.MustRegister(engine.WildcardModel, EncodeObserver())
	reg.MustRegister(engine.WildcardModel, storage.Observer())
	reg.MustRegister(engine.WildcardModel, DecodeObserver())
	reg.MustRegister(engine.WildcardModel, audit.Observer())
}
