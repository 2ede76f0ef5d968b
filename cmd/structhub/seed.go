package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/structhub-io/structhub/pkg/metastore"
	"github.com/structhub-io/structhub/pkg/tenancy"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load model definitions from a YAML file into the metadata store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := tenancy.Validate(tenant); err != nil {
			return err
		}
		db, err := openDB(dsn)
		if err != nil {
			return err
		}
		store := metastore.NewStore(db)
		if err := store.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate metadata tables: %w", err)
		}
		n, err := store.SeedFromFile(cmd.Context(), tenant, seedFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d model(s) for tenant %s\n", n, tenant)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "models.yaml", "Model definitions file")
}
