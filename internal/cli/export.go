package cli

import (
	"fmt"
	"io"
	"os"

	"newsdesk/internal/service/mirror"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a zip archive of the file mirror",
		Long: `Archive every file under MIRROR_ROOT. The database is not touched.
Without --out the archive is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := loadConfig(cmd, rootOpts)
			sync := mirror.NewFileSynchronizer(cfg.MirrorRoot, logger)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if err := sync.Export(cmd.Context(), w); err != nil {
				return err
			}
			if out != "" {
				logger.Info("mirror exported", "root", cfg.MirrorRoot, "out", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (default stdout)")

	return cmd
}
