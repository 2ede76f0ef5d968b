// Package storage is the gorm-backed record store behind the storage ring,
// together with the transactional wrapper that gives one batch pass its
// atomicity. Records of every model share one table: the model's structure
// lives in metadata, so rows carry their field values as encoded JSON text.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/model"
)

// IDField is the record field carrying the storage identifier.
const IDField = "id"

// ErrRecordNotFound is returned when a record id does not exist for the
// given tenant and model.
var ErrRecordNotFound = errors.New("record not found")

// RecordRow is the stored shape of one record.
type RecordRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Tenant    string `gorm:"size:64;index:idx_records_scope,priority:1"`
	Model     string `gorm:"size:128;index:idx_records_scope,priority:2"`
	Data      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the table name stable across gorm naming strategies.
func (RecordRow) TableName() string { return "records" }

// Store provides record persistence scoped by tenant and model.
type Store struct {
	db *gorm.DB
}

// NewStore creates a record store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the records table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&RecordRow{})
}

// Create inserts a new record row.
func (s *Store) Create(tenant, modelName, id string, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", id, err)
	}
	row := RecordRow{ID: id, Tenant: tenant, Model: modelName, Data: string(data)}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("create record %s: %w", id, err)
	}
	return nil
}

// Get loads one record by id.
func (s *Store) Get(tenant, modelName, id string) (model.Record, error) {
	var row RecordRow
	err := s.db.Where("id = ? AND tenant = ? AND model = ?", id, tenant, modelName).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

// Update merges the given fields into the stored record.
func (s *Store) Update(tenant, modelName, id string, fields model.Record) error {
	stored, err := s.Get(tenant, modelName, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		stored[k] = v
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", id, err)
	}
	res := s.db.Model(&RecordRow{}).
		Where("id = ? AND tenant = ? AND model = ?", id, tenant, modelName).
		Update("data", string(data))
	if res.Error != nil {
		return fmt.Errorf("update record %s: %w", id, res.Error)
	}
	return nil
}

// Delete removes one record by id.
func (s *Store) Delete(tenant, modelName, id string) error {
	res := s.db.Where("id = ? AND tenant = ? AND model = ?", id, tenant, modelName).Delete(&RecordRow{})
	if res.Error != nil {
		return fmt.Errorf("delete record %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Count returns the number of stored records for one tenant and model.
func (s *Store) Count(tenant, modelName string) (int64, error) {
	var n int64
	err := s.db.Model(&RecordRow{}).Where("tenant = ? AND model = ?", tenant, modelName).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
