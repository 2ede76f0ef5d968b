package metastore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/structhub-io/structhub/pkg/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, NewStore(db).AutoMigrate())
	return db
}

func sampleModel() *model.Model {
	min := 0.0
	return &model.Model{
		Name:   "accounts",
		Status: model.StatusActive,
		Fields: []string{"id", "email", "balance", "status"},
		FieldTypes: map[string]model.FieldType{
			"id":      model.TypeString,
			"email":   model.TypeString,
			"balance": model.TypeFloat,
			"status":  model.TypeString,
		},
		Required:   map[string]bool{"email": true},
		Immutable:  map[string]bool{"id": true},
		SudoOnly:   map[string]bool{"status": true},
		Tracked:    map[string]bool{"balance": true},
		Ranges:     map[string]model.Range{"balance": {Min: &min}},
		Enums:      map[string][]string{"status": {"active", "suspended"}},
		Transforms: map[string]string{"email": "lower"},
		Rules: []model.Rule{
			{Name: "r1", Expr: "true"},
			{Name: "r2", Expr: "false", Message: "never"},
		},
	}
}

func TestSaveAndLoadModel(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SaveModel(ctx, "default", sampleModel()))

	got, err := store.LoadModel(ctx, "default", "accounts")
	require.NoError(t, err)

	assert.Equal(t, "accounts", got.Name)
	assert.Equal(t, model.StatusActive, got.Status)
	assert.Equal(t, []string{"id", "email", "balance", "status"}, got.Fields)
	assert.Equal(t, model.TypeFloat, got.TypeOf("balance"))
	assert.True(t, got.Required["email"])
	assert.True(t, got.Immutable["id"])
	assert.True(t, got.SudoOnly["status"])
	assert.True(t, got.Tracked["balance"])
	require.NotNil(t, got.Ranges["balance"].Min)
	assert.Equal(t, 0.0, *got.Ranges["balance"].Min)
	assert.Equal(t, []string{"active", "suspended"}, got.Enums["status"])
	assert.Equal(t, "lower", got.Transforms["email"])
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "r1", got.Rules[0].Name, "rule order must survive a round trip")
}

func TestLoadMissingModel(t *testing.T) {
	store := NewStore(setupTestDB(t))

	_, err := store.LoadModel(context.Background(), "default", "ghost")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestSaveReplacesFieldsAndRules(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SaveModel(ctx, "default", sampleModel()))

	updated := sampleModel()
	updated.Fields = []string{"id", "email"}
	updated.Rules = nil
	require.NoError(t, store.SaveModel(ctx, "default", updated))

	got, err := store.LoadModel(ctx, "default", "accounts")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "email"}, got.Fields)
	assert.Empty(t, got.Rules)
}

func TestTenantScoping(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.SaveModel(ctx, "alpha", sampleModel()))

	_, err := store.LoadModel(ctx, "beta", "accounts")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

const sampleYAML = `
models:
  - name: accounts
    fields:
      - name: id
        immutable: true
      - name: email
        required: true
        transform: lower
      - name: balance
        type: float
        tracked: true
        range: {min: 0}
      - name: status
        sudo_only: true
        enum: [active, suspended]
    rules:
      - name: suspended-zero-balance
        expr: 'record.status != "suspended" || double(record.balance) == 0.0'
        message: suspended accounts must have zero balance
  - name: notes
    fields:
      - name: id
      - name: body
`

func TestParseDefinitions(t *testing.T) {
	file, err := ParseDefinitions([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, file.Models, 2)

	m := file.Models[0].ToModel()
	assert.Equal(t, "accounts", m.Name)
	assert.Equal(t, model.StatusActive, m.Status)
	assert.True(t, m.Required["email"])
	assert.True(t, m.Tracked["balance"])
	assert.Equal(t, model.TypeFloat, m.TypeOf("balance"))
	assert.Equal(t, model.TypeString, m.TypeOf("email"), "untyped fields default to string")
	require.Len(t, m.Rules, 1)
	assert.Equal(t, "suspended-zero-balance", m.Rules[0].Name)
}

func TestParseDefinitionsRejectsUnknownFields(t *testing.T) {
	_, err := ParseDefinitions([]byte("models:\n  - name: a\n    fiellds: []\n"))
	assert.Error(t, err, "typos in definition files must fail loudly")
}

func TestParseDefinitionsRejectsEmptyModels(t *testing.T) {
	_, err := ParseDefinitions([]byte("models:\n  - name: a\n"))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte("models:\n  - fields:\n      - name: x\n"))
	assert.Error(t, err)
}

func TestSeedFromFile(t *testing.T) {
	store := NewStore(setupTestDB(t))
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	n, err := store.SeedFromFile(context.Background(), "default", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := store.LoadModel(context.Background(), "default", "notes")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "body"}, got.Fields)
}
