package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/model"
	"github.com/structhub-io/structhub/pkg/policy"
	"github.com/structhub-io/structhub/pkg/storage"
)

// setupFileDB uses a file-backed database: transactional behavior across
// pooled connections is what these tests are about.
func setupFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tx_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.NewStore(db).AutoMigrate())
	return db
}

func accountsModel() *model.Model {
	return &model.Model{
		Name:       "accounts",
		Status:     model.StatusActive,
		Fields:     []string{"id", "email"},
		FieldTypes: map[string]model.FieldType{"id": model.TypeString, "email": model.TypeString},
		Required:   map[string]bool{"email": true},
	}
}

func newRunner() *engine.Runner {
	registry := engine.NewRegistry()
	registry.MustRegister(engine.WildcardModel, policy.RequiredFieldsObserver())
	registry.MustRegister(engine.WildcardModel, storage.Observer())
	return engine.NewRunner(registry, nil, nil)
}

func TestCommitOnSuccess(t *testing.T) {
	db := setupFileDB(t)
	runner := newRunner()

	records := []model.Record{
		{"email": "a@b.c"},
		{"email": "d@e.f"},
	}
	result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
		handle := &engine.Handle{Tenant: "default", Storage: tx}
		return runner.Execute(context.Background(), handle, engine.OperationCreate, accountsModel(), records), nil
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	n, err := storage.NewStore(db).Count("default", "accounts")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

// One invalid record in a batch of three: the batch fails, the error carries
// the failing record's index, and the wrapper rolls back the storage-ring
// writes already issued for the two valid records.
func TestRollbackDiscardsPartialWrites(t *testing.T) {
	db := setupFileDB(t)
	runner := newRunner()

	records := []model.Record{
		{"email": "a@b.c"},
		{}, // Missing required field.
		{"email": "d@e.f"},
	}
	result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
		handle := &engine.Handle{Tenant: "default", Storage: tx}
		return runner.Execute(context.Background(), handle, engine.OperationCreate, accountsModel(), records), nil
	})
	require.NoError(t, err)
	require.False(t, result.Success)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].RecordIndex)
	assert.Equal(t, engine.CodeRequiredField, engine.ErrorCode(result.Errors[0].Err))

	n, err := storage.NewStore(db).Count("default", "accounts")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "rollback must discard writes for individually-passing records")
}

func TestStorageObserverFind(t *testing.T) {
	db := setupFileDB(t)
	require.NoError(t, storage.NewStore(db).Create("default", "accounts", "r1",
		model.Record{"id": "r1", "email": "a@b.c"}))

	runner := newRunner()
	records := []model.Record{{"id": "r1"}}
	result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
		handle := &engine.Handle{Tenant: "default", Storage: tx}
		return runner.Execute(context.Background(), handle, engine.OperationFind, accountsModel(), records), nil
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "a@b.c", records[0]["email"], "find enriches the record in place")
}

func TestStorageObserverAssignsID(t *testing.T) {
	db := setupFileDB(t)
	runner := newRunner()

	records := []model.Record{{"email": "a@b.c"}}
	result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
		handle := &engine.Handle{Tenant: "default", Storage: tx}
		return runner.Execute(context.Background(), handle, engine.OperationCreate, accountsModel(), records), nil
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, records[0]["id"], "create assigns an id when absent")
}

func TestUpdateMissingRecordFails(t *testing.T) {
	db := setupFileDB(t)
	runner := newRunner()

	records := []model.Record{{"id": "ghost", "email": "a@b.c"}}
	result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
		handle := &engine.Handle{Tenant: "default", Storage: tx}
		return runner.Execute(context.Background(), handle, engine.OperationUpdate, accountsModel(), records), nil
	})
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, engine.CodeInvalidValue, engine.ErrorCode(result.Errors[0].Err))
}
