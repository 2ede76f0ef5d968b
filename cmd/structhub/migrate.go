package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/structhub-io/structhub/pkg/audit"
	"github.com/structhub-io/structhub/pkg/metastore"
	"github.com/structhub-io/structhub/pkg/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the metadata, record, and audit tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(dsn)
		if err != nil {
			return err
		}
		if err := metastore.NewStore(db).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate metadata tables: %w", err)
		}
		if err := storage.NewStore(db).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate records table: %w", err)
		}
		if err := audit.NewStore(db).AutoMigrate(); err != nil {
			return fmt.Errorf("migrate audit table: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
		return nil
	},
}
