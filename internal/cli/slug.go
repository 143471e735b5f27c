package cli

import (
	"fmt"
	"strings"

	"newsdesk/internal/utils"

	"github.com/spf13/cobra"
)

// NewSlugCommand creates the slug command.
func NewSlugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <title>...",
		Short: "Print the slug candidate of a title",
		Long: `Print the slug candidate a title produces, before any uniqueness
suffix. Useful for checking transliteration of Arabic titles.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), utils.GenerateSlug(strings.Join(args, " ")))
			return err
		},
	}
}
