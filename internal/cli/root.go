// Package cli implements centerctl, the operator tool for schema migrations,
// bootstrapping the first admin, and dry-running status transitions.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"servicecenter/pkg/config"
)

// App carries what every subcommand needs.
type App struct {
	Config config.Config
}

func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "centerctl",
		Short:         "Service center operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCommand(app),
		newCreateAdminCommand(app),
		newProposeCommand(),
	)
	return root
}

// Execute runs the root command against the process arguments and returns
// the exit code.
func Execute() int {
	app := &App{Config: config.Load()}
	root := NewRootCommand(app)
	if err := root.Execute(); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			return exit.Code
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
