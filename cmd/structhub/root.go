package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dsn    string
	tenant string
)

var rootCmd = &cobra.Command{
	Use:   "structhub",
	Short: "Multi-tenant dynamic-schema record engine",
	Long: `structhub stores records whose table structure is runtime metadata.

Every mutation or read passes through a ring-based observer pipeline:
validation, field security, business rules, type mapping, storage, and
audit, in deterministic priority order with per-observer timeout isolation.

Flags can also be set through STRUCTHUB_* environment variables
(e.g. STRUCTHUB_DSN, STRUCTHUB_TENANT).`,
}

func init() {
	viper.SetEnvPrefix("STRUCTHUB")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "structhub.db",
		"Database DSN: a sqlite file path, postgres://..., or mysql://...")
	rootCmd.PersistentFlags().StringVarP(&tenant, "tenant", "t", "default",
		"Tenant (logical database) to operate on")
	bindFlag("dsn")
	bindFlag("tenant")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(execCmd)
}

// bindFlag registers a persistent flag with viper so the STRUCTHUB_* env var
// provides its default.
func bindFlag(name string) {
	if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
	if v := viper.GetString(name); v != "" {
		_ = rootCmd.PersistentFlags().Set(name, v)
	}
}

// newLogger builds the process logger.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
