package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/store"
)

// maxSourceWidth truncates the program text shown per run.
const maxSourceWidth = 60

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent query runs",
		Long: `List recent runs recorded in the store, newest first.
Runs are recorded only while history.enabled is set in the config.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			st, err := openStore(cfg.Store.Path, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					logger.Error("error closing store", "error", err)
				}
			}()

			runs, err := st.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read history", err)
			}
			if rootOpts.Format == "json" {
				f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return f.Success(runs)
			}
			printRuns(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultHistoryLimit, "number of runs to show")
	return cmd
}

func printRuns(cmd *cobra.Command, runs []store.Run) {
	if len(runs) == 0 {
		printf(cmd, "no runs recorded\n")
		return
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tEXPRS\tROWS\tSTATUS\tSOURCE")
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Format(time.RFC3339),
			r.Duration.Round(time.Millisecond),
			r.Expressions,
			r.Rows,
			status,
			oneLine(r.Source, maxSourceWidth),
		)
	}
	_ = tw.Flush()
}

// oneLine collapses whitespace and truncates s to width runes.
func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}
