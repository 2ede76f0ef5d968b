package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/structhub-io/structhub/pkg/engine"
	"github.com/structhub-io/structhub/pkg/metastore"
	"github.com/structhub-io/structhub/pkg/model"
	"github.com/structhub-io/structhub/pkg/modelcache"
	"github.com/structhub-io/structhub/pkg/policy"
	"github.com/structhub-io/structhub/pkg/storage"
	"github.com/structhub-io/structhub/pkg/tenancy"
)

var (
	execModel   string
	execOp      string
	execRecords string
	execSudo    bool
)

// execResult is the JSON rendering of a batch verdict.
type execResult struct {
	Success  bool           `json:"success"`
	Records  []model.Record `json:"records"`
	Errors   []execError    `json:"errors,omitempty"`
	Warnings []execError    `json:"warnings,omitempty"`
}

type execError struct {
	RecordIndex int    `json:"recordIndex"`
	Message     string `json:"message"`
}

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Run one batch pass through the observer pipeline",
	Long: `exec reads a JSON array of records, resolves the model, and runs the batch
through every relevant ring inside one transaction. The transaction commits
only when the whole batch passes; any failure rolls back every write.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := tenancy.Validate(tenant); err != nil {
			return err
		}

		data, err := os.ReadFile(execRecords)
		if err != nil {
			return fmt.Errorf("read records %s: %w", execRecords, err)
		}
		var records []model.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("parse records: %w", err)
		}

		db, err := openDB(dsn)
		if err != nil {
			return err
		}
		logger := newLogger()

		cache := modelcache.New(metastore.NewStore(db), logger)
		m, err := cache.GetModel(cmd.Context(), tenant, execModel)
		if err != nil {
			return err
		}

		registry := engine.NewRegistry()
		policy.RegisterDefaults(registry)
		runner := engine.NewRunner(registry, engine.RunnerConfigFromEnv(), logger)

		result, err := storage.ExecuteInTransaction(db, func(tx *gorm.DB) (*engine.Result, error) {
			handle := &engine.Handle{Tenant: tenant, Storage: tx, Sudo: execSudo, Logger: logger}
			return runner.Execute(cmd.Context(), handle, engine.Operation(execOp), m, records), nil
		})
		if err != nil {
			return err
		}

		out := execResult{Success: result.Success, Records: records}
		for _, ie := range result.Errors {
			out.Errors = append(out.Errors, execError{RecordIndex: ie.RecordIndex, Message: ie.Err.Error()})
		}
		for _, iw := range result.Warnings {
			out.Warnings = append(out.Warnings, execError{RecordIndex: iw.RecordIndex, Message: iw.Warning.String()})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	execCmd.Flags().StringVarP(&execModel, "model", "m", "", "Target model name (required)")
	execCmd.Flags().StringVarP(&execOp, "op", "p", "create", "Operation: create, update, delete, find")
	execCmd.Flags().StringVarP(&execRecords, "records", "r", "", "JSON file holding the record batch (required)")
	execCmd.Flags().BoolVar(&execSudo, "sudo", false, "Run with an elevated handle")
	_ = execCmd.MarkFlagRequired("model")
	_ = execCmd.MarkFlagRequired("records")
}
