package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"librarydesk/internal/storage"
)

var reset bool

// migrateCmd creates tables (SQL) or indexes (mongo)
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	Long: `Create or update tables for books, users and loans.

Examples:
  libraryctl migrate                   # Auto-migrate the configured store
  libraryctl migrate --reset           # Drop everything first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		_, closeStore, err := storage.Open(cmd.Context(), cfg, storage.Options{Reset: reset, Migrate: true})
		if err != nil {
			return err
		}
		defer closeStore()
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s store\n", cfg.StoreDriver)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&reset, "reset", false, "Drop all tables or collections before migrating")
	rootCmd.AddCommand(migrateCmd)
}
