// Package audit records writes to tracked fields. Every model declares which
// of its fields are tracked; the ring-7 observer appends one trail entry per
// tracked field present in a mutating pass. Entries share the batch
// transaction, so a rolled-back batch leaves no trail.
package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Entry is one tracked-field write.
type Entry struct {
	ID        uint   `gorm:"primaryKey"`
	Tenant    string `gorm:"size:64;index:idx_audit_scope,priority:1"`
	Model     string `gorm:"size:128;index:idx_audit_scope,priority:2"`
	RecordID  string `gorm:"size:36;index"`
	Field     string `gorm:"size:128"`
	Operation string `gorm:"size:16"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName keeps the table name stable across gorm naming strategies.
func (Entry) TableName() string { return "audit_entries" }

// Store provides audit trail persistence.
type Store struct {
	db *gorm.DB
}

// NewStore creates an audit store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the audit_entries table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Entry{})
}

// Append writes one trail entry.
func (s *Store) Append(e *Entry) error {
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListByRecord returns the trail for one record, oldest first.
func (s *Store) ListByRecord(tenant, modelName, recordID string) ([]Entry, error) {
	var out []Entry
	err := s.db.Where("tenant = ? AND model = ? AND record_id = ?", tenant, modelName, recordID).
		Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}

// Prune deletes entries older than the retention cutoff and returns the
// number removed.
func (s *Store) Prune(olderThan time.Time) (int64, error) {
	res := s.db.Where("created_at < ?", olderThan).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune audit entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
