package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/ir"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields [entity]",
		Short: "List selectable fields",
		Long: `List the field names each entity accepts after SELECT and in WHERE.

Example:
  suiql fields
  suiql fields coin`,
		Args:          cobra.MaximumNArgs(1),
		ValidArgs:     entityNames(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := ir.AllEntityKinds()
			if len(args) == 1 {
				kind, err := ir.ParseEntityKind(args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "unknown entity", err)
				}
				kinds = []ir.EntityKind{kind}
			}

			if rootOpts.Format == "json" {
				out := make(map[string][]string, len(kinds))
				for _, k := range kinds {
					out[k.String()] = ir.FieldNames(k)
				}
				f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return f.Success(out)
			}
			printFields(cmd.OutOrStdout(), kinds)
			return nil
		},
	}
}

// printFields writes one line per entity. nil kinds means all.
func printFields(w io.Writer, kinds []ir.EntityKind) {
	if kinds == nil {
		kinds = ir.AllEntityKinds()
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range kinds {
		fmt.Fprintf(tw, "%s\t%s\n", k, strings.Join(ir.FieldNames(k), ", "))
	}
	_ = tw.Flush()
}

func entityNames() []string {
	kinds := ir.AllEntityKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
