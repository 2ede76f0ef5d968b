package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/engine"
)

// errRollback signals gorm to roll the transaction back after a failed batch.
// It never escapes ExecuteInTransaction.
var errRollback = errors.New("batch failed, rolling back")

// ExecuteInTransaction owns begin/commit/rollback around one batch pass. fn
// receives the transaction-scoped db to bind into the system handle and
// returns the batch verdict; the transaction commits iff the verdict is
// Success and rolls back unconditionally otherwise, including storage-ring
// writes already issued for individually successful records.
func ExecuteInTransaction(db *gorm.DB, fn func(tx *gorm.DB) (*engine.Result, error)) (*engine.Result, error) {
	var result *engine.Result

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = fn(tx)
		if err != nil {
			return fmt.Errorf("execute batch: %w", err)
		}
		if result == nil || !result.Success {
			return errRollback
		}
		return nil
	})

	if errors.Is(err, errRollback) {
		// Expected failure path; the verdict carries the detail.
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
