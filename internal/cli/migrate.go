package cli

import (
	"fmt"

	"newsdesk/internal/app"
	"newsdesk/internal/repository/postgres"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables, constraints and indexes",
		Long: `Create the newsdesk tables for the configured table prefix.

With --drop every table of the prefix is dropped first. Dropping is refused
when ENVIRONMENT=prod.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd, rootOpts)

			// SAFETY: Prevent destructive operations in production
			if drop && cfg.Environment == "prod" {
				return fmt.Errorf("refusing to drop tables in production")
			}

			a, err := app.Connect(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			if drop {
				if err := postgres.DropSchema(cmd.Context(), a.Pool, a.Tables); err != nil {
					return err
				}
				logger.Warn("tables dropped", "prefix", cfg.TablePrefix)
			}

			if err := a.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (prefix %q)\n", cfg.TablePrefix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "drop all tables before creating them")

	return cmd
}
