package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"servicecenter/internal/auth"
	"servicecenter/internal/staff"
	"servicecenter/pkg/db"
)

func newCreateAdminCommand(app *App) *cobra.Command {
	var in staff.Input
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin staff account",
		Long: `Create the first admin so someone can log in to the dashboard.

Example:
  centerctl create-admin --email owner@example.com --name "Shop Owner" --password 's3cret-pass'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Role = string(auth.RoleAdmin)
			in, err := in.Normalize(true)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(in.Password, app.Config.Auth.BcryptCost)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := db.Open(ctx, app.Config)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer pool.Close()

			s, err := staff.NewRepository(pool).Create(ctx, in, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created id=%s email=%s\n", s.ID, s.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.BranchID, "branch", "", "optional home branch id")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
