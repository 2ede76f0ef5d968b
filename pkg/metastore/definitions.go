package metastore

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/structhub-io/structhub/pkg/model"
)

// DefinitionFile is the YAML shape of a model definitions file.
type DefinitionFile struct {
	Models []ModelDefinition `yaml:"models"`
}

// ModelDefinition declares one model in YAML form.
type ModelDefinition struct {
	Name     string            `yaml:"name"`
	Status   string            `yaml:"status,omitempty"`
	External bool              `yaml:"external,omitempty"`
	Frozen   bool              `yaml:"frozen,omitempty"`
	Fields   []FieldDefinition `yaml:"fields"`
	Rules    []model.Rule      `yaml:"rules,omitempty"`
}

// FieldDefinition declares one field in YAML form.
type FieldDefinition struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type,omitempty"`
	Array     bool         `yaml:"array,omitempty"`
	Required  bool         `yaml:"required,omitempty"`
	Immutable bool         `yaml:"immutable,omitempty"`
	SudoOnly  bool         `yaml:"sudo_only,omitempty"`
	Tracked   bool         `yaml:"tracked,omitempty"`
	Range     *model.Range `yaml:"range,omitempty"`
	Enum      []string     `yaml:"enum,omitempty"`
	Transform string       `yaml:"transform,omitempty"`
}

// ParseDefinitions decodes a model definitions document. Unknown YAML fields
// are rejected so typos in definition files fail loudly.
func ParseDefinitions(data []byte) (*DefinitionFile, error) {
	var file DefinitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	for _, def := range file.Models {
		if def.Name == "" {
			return nil, fmt.Errorf("parse definitions: model name is required")
		}
		if len(def.Fields) == 0 {
			return nil, fmt.Errorf("parse definitions: model %s declares no fields", def.Name)
		}
	}
	return &file, nil
}

// ToModel converts a YAML definition into the runtime descriptor.
func (d *ModelDefinition) ToModel() *model.Model {
	m := &model.Model{
		Name:        d.Name,
		Status:      model.Status(d.Status),
		External:    d.External,
		Frozen:      d.Frozen,
		FieldTypes:  make(map[string]model.FieldType),
		ArrayFields: make(map[string]bool),
		Immutable:   make(map[string]bool),
		SudoOnly:    make(map[string]bool),
		Tracked:     make(map[string]bool),
		Required:    make(map[string]bool),
		Ranges:      make(map[string]model.Range),
		Enums:       make(map[string][]string),
		Transforms:  make(map[string]string),
		Rules:       d.Rules,
	}
	if m.Status == "" {
		m.Status = model.StatusActive
	}
	for _, f := range d.Fields {
		m.Fields = append(m.Fields, f.Name)
		if f.Type != "" {
			m.FieldTypes[f.Name] = model.FieldType(f.Type)
		} else {
			m.FieldTypes[f.Name] = model.TypeString
		}
		if f.Array {
			m.ArrayFields[f.Name] = true
		}
		if f.Required {
			m.Required[f.Name] = true
		}
		if f.Immutable {
			m.Immutable[f.Name] = true
		}
		if f.SudoOnly {
			m.SudoOnly[f.Name] = true
		}
		if f.Tracked {
			m.Tracked[f.Name] = true
		}
		if f.Range != nil {
			m.Ranges[f.Name] = *f.Range
		}
		if len(f.Enum) > 0 {
			m.Enums[f.Name] = f.Enum
		}
		if f.Transform != "" {
			m.Transforms[f.Name] = f.Transform
		}
	}
	return m
}

// SeedFromFile loads a definitions file and saves every model for the
// tenant. Existing models are replaced; callers must invalidate affected
// cache entries afterwards.
func (s *Store) SeedFromFile(ctx context.Context, tenant, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read definitions %s: %w", path, err)
	}
	file, err := ParseDefinitions(data)
	if err != nil {
		return 0, err
	}
	for _, def := range file.Models {
		if err := s.SaveModel(ctx, tenant, def.ToModel()); err != nil {
			return 0, err
		}
	}
	return len(file.Models), nil
}
