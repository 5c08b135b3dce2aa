package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"servicecenter/pkg/db"
)

func newMigrateCommand(app *App) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply every pending migration. DIRECT_URL is used when set, so
migrations bypass a transaction-mode pooler.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = app.Config.MigrationsPath
			}
			if path == "" {
				path = "file://migrations"
			}
			if err := db.MigrateConfig(path, app.Config); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			v, dirty, err := db.MigrationVersion(path, app.Config)
			if err != nil {
				return fmt.Errorf("read version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "migration source URL (default MIGRATIONS_PATH or file://migrations)")
	return cmd
}
