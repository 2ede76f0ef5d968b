// Package model defines the runtime schema descriptor for one logical table
// and the record shape that flows through the observer pipeline. Models are
// produced by the metadata store and treated as read-only by the engine; the
// schema subsystem owns their internal consistency.
package model

// Status is the lifecycle state of a model.
type Status string

const (
	// StatusActive models accept reads and writes.
	StatusActive Status = "active"
	// StatusTrashed models are soft-deleted; resolving one is a hard failure.
	StatusTrashed Status = "trashed"
	// StatusFrozen models are readable but reject structural change.
	StatusFrozen Status = "frozen"
)

// FieldType is the declared storage type of a field.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInt      FieldType = "int"
	TypeFloat    FieldType = "float"
	TypeBool     FieldType = "bool"
	TypeDateTime FieldType = "datetime"
	TypeJSON     FieldType = "json"
)

// Range is an optional numeric constraint on a field. A nil bound means
// unbounded on that side.
type Range struct {
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Rule is one ordered cross-field validation rule. Expr is a CEL expression
// over a "record" map variable and must evaluate to a boolean; false fails
// the record with Message.
type Rule struct {
	Name    string `yaml:"name" json:"name"`
	Expr    string `yaml:"expr" json:"expr"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Model is the runtime schema descriptor for one logical table. Field-name
// keys in the policy sets and maps are expected to exist in Fields; that
// invariant is owned by the schema subsystem and trusted here.
type Model struct {
	// Name uniquely identifies the model within a tenant.
	Name string

	// Status is the model lifecycle state.
	Status Status

	// Fields is the ordered list of field names.
	Fields []string

	// FieldTypes maps a field name to its declared type. Fields absent from
	// the map default to TypeString.
	FieldTypes map[string]FieldType

	// ArrayFields marks fields whose values are ordered lists of the
	// declared type.
	ArrayFields map[string]bool

	// Immutable fields may not change after the record is created.
	Immutable map[string]bool

	// SudoOnly fields may only be written through an elevated handle.
	SudoOnly map[string]bool

	// Tracked fields have every write recorded in the audit trail.
	Tracked map[string]bool

	// Required fields must be present and non-nil on create.
	Required map[string]bool

	// Ranges holds numeric constraints per field.
	Ranges map[string]Range

	// Enums restricts a field to a fixed value set.
	Enums map[string][]string

	// Transforms maps a field to a named value transform applied before
	// storage.
	Transforms map[string]string

	// Rules are ordered cross-field validation rules.
	Rules []Rule

	// External marks models whose data lives outside the record store.
	External bool

	// Frozen mirrors StatusFrozen for models loaded before the status
	// migration; either signal blocks structural change.
	Frozen bool
}

// HasField reports whether name is a declared field of the model.
func (m *Model) HasField(name string) bool {
	for _, f := range m.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// TypeOf returns the declared type of a field, defaulting to TypeString.
func (m *Model) TypeOf(name string) FieldType {
	if t, ok := m.FieldTypes[name]; ok {
		return t
	}
	return TypeString
}

// IsArray reports whether the field holds an ordered list of values.
func (m *Model) IsArray(name string) bool {
	return m.ArrayFields[name]
}

// Writable reports whether the model accepts mutations at all.
func (m *Model) Writable() bool {
	return m.Status == StatusActive && !m.Frozen
}
