package cli

import (
	"github.com/spf13/cobra"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Format == "json" {
				f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return f.Success(map[string]string{
					"engine":   ir.EngineVersion,
					"language": ir.LanguageVersion,
				})
			}
			printf(cmd, "suiql %s (language %s)\n", ir.EngineVersion, ir.LanguageVersion)
			return nil
		},
	}
}
