// Package metastore is the gorm-backed metadata store: the durable source of
// model descriptors behind the model cache. It is queried only on cache
// misses; SaveModel is the single schema-mutation path and its callers are
// responsible for invalidating the cache entry afterwards.
package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/model"
)

// ErrModelNotFound is returned when a model name is unknown for the tenant.
var ErrModelNotFound = errors.New("model not found")

// ModelRow is the stored shape of one model descriptor.
type ModelRow struct {
	ID       uint   `gorm:"primaryKey"`
	Tenant   string `gorm:"size:64;uniqueIndex:idx_models_scope,priority:1"`
	Name     string `gorm:"size:128;uniqueIndex:idx_models_scope,priority:2"`
	Status   string `gorm:"size:16"`
	External bool
	Frozen   bool
}

// TableName keeps the table name stable across gorm naming strategies.
func (ModelRow) TableName() string { return "models" }

// FieldRow is the stored shape of one field declaration.
type FieldRow struct {
	ID        uint `gorm:"primaryKey"`
	ModelID   uint `gorm:"index"`
	Position  int
	Name      string `gorm:"size:128"`
	Type      string `gorm:"size:16"`
	IsArray   bool
	Required  bool
	Immutable bool
	SudoOnly  bool
	Tracked   bool
	RangeMin  *float64
	RangeMax  *float64
	Enum      string `gorm:"type:text"` // JSON-encoded value list, empty when unconstrained.
	Transform string `gorm:"size:64"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (FieldRow) TableName() string { return "model_fields" }

// RuleRow is the stored shape of one ordered cross-field rule.
type RuleRow struct {
	ID       uint `gorm:"primaryKey"`
	ModelID  uint `gorm:"index"`
	Position int
	Name     string `gorm:"size:128"`
	Expr     string `gorm:"type:text"`
	Message  string `gorm:"type:text"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (RuleRow) TableName() string { return "model_rules" }

// Store provides model metadata persistence.
type Store struct {
	db *gorm.DB
}

// NewStore creates a metadata store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the metadata tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&ModelRow{}, &FieldRow{}, &RuleRow{})
}

// LoadModel loads the full descriptor for (tenant, name). Satisfies
// modelcache.Loader.
func (s *Store) LoadModel(_ context.Context, tenant, name string) (*model.Model, error) {
	var row ModelRow
	err := s.db.Where("tenant = ? AND name = ?", tenant, name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", name, err)
	}

	var fields []FieldRow
	if err := s.db.Where("model_id = ?", row.ID).Order("position ASC").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("load fields of %s: %w", name, err)
	}
	var rules []RuleRow
	if err := s.db.Where("model_id = ?", row.ID).Order("position ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load rules of %s: %w", name, err)
	}

	return assemble(&row, fields, rules)
}

// SaveModel upserts the descriptor and replaces its fields and rules. This
// is the schema-mutation path; callers must invalidate the model cache entry
// after it returns.
func (s *Store) SaveModel(_ context.Context, tenant string, m *model.Model) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		row := ModelRow{
			Tenant:   tenant,
			Name:     m.Name,
			Status:   string(m.Status),
			External: m.External,
			Frozen:   m.Frozen,
		}

		var existing ModelRow
		err := tx.Where("tenant = ? AND name = ?", tenant, m.Name).First(&existing).Error
		switch {
		case err == nil:
			row.ID = existing.ID
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("update model %s: %w", m.Name, err)
			}
			if err := tx.Where("model_id = ?", row.ID).Delete(&FieldRow{}).Error; err != nil {
				return fmt.Errorf("clear fields of %s: %w", m.Name, err)
			}
			if err := tx.Where("model_id = ?", row.ID).Delete(&RuleRow{}).Error; err != nil {
				return fmt.Errorf("clear rules of %s: %w", m.Name, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create model %s: %w", m.Name, err)
			}
		default:
			return fmt.Errorf("find model %s: %w", m.Name, err)
		}

		for i, name := range m.Fields {
			fr := FieldRow{
				ModelID:   row.ID,
				Position:  i,
				Name:      name,
				Type:      string(m.TypeOf(name)),
				IsArray:   m.IsArray(name),
				Required:  m.Required[name],
				Immutable: m.Immutable[name],
				SudoOnly:  m.SudoOnly[name],
				Tracked:   m.Tracked[name],
				Transform: m.Transforms[name],
			}
			if rng, ok := m.Ranges[name]; ok {
				fr.RangeMin = rng.Min
				fr.RangeMax = rng.Max
			}
			if values, ok := m.Enums[name]; ok {
				encoded, err := json.Marshal(values)
				if err != nil {
					return fmt.Errorf("encode enum of %s.%s: %w", m.Name, name, err)
				}
				fr.Enum = string(encoded)
			}
			if err := tx.Create(&fr).Error; err != nil {
				return fmt.Errorf("save field %s.%s: %w", m.Name, name, err)
			}
		}

		for i, rule := range m.Rules {
			rr := RuleRow{ModelID: row.ID, Position: i, Name: rule.Name, Expr: rule.Expr, Message: rule.Message}
			if err := tx.Create(&rr).Error; err != nil {
				return fmt.Errorf("save rule %s/%s: %w", m.Name, rule.Name, err)
			}
		}
		return nil
	})
}

// assemble builds a model descriptor from its stored rows.
func assemble(row *ModelRow, fields []FieldRow, rules []RuleRow) (*model.Model, error) {
	m := &model.Model{
		Name:        row.Name,
		Status:      model.Status(row.Status),
		External:    row.External,
		Frozen:      row.Frozen,
		FieldTypes:  make(map[string]model.FieldType),
		ArrayFields: make(map[string]bool),
		Immutable:   make(map[string]bool),
		SudoOnly:    make(map[string]bool),
		Tracked:     make(map[string]bool),
		Required:    make(map[string]bool),
		Ranges:      make(map[string]model.Range),
		Enums:       make(map[string][]string),
		Transforms:  make(map[string]string),
	}
	if m.Status == "" {
		m.Status = model.StatusActive
	}

	for _, f := range fields {
		m.Fields = append(m.Fields, f.Name)
		m.FieldTypes[f.Name] = model.FieldType(f.Type)
		if f.IsArray {
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
		if f.RangeMin != nil || f.RangeMax != nil {
			m.Ranges[f.Name] = model.Range{Min: f.RangeMin, Max: f.RangeMax}
		}
		if f.Enum != "" {
			var values []string
			if err := json.Unmarshal([]byte(f.Enum), &values); err != nil {
				return nil, fmt.Errorf("decode enum of %s.%s: %w", row.Name, f.Name, err)
			}
			m.Enums[f.Name] = values
		}
		if f.Transform != "" {
			m.Transforms[f.Name] = f.Transform
		}
	}

	for _, r := range rules {
		m.Rules = append(m.Rules, model.Rule{Name: r.Name, Expr: r.Expr, Message: r.Message})
	}
	return m, nil
}
