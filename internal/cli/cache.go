package cli

import (
	"github.com/spf13/cobra"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent RPC response cache",
	}
	cmd.AddCommand(newCachePurgeCommand(rootOpts))
	return cmd
}

func newCachePurgeCommand(rootOpts *RootOptions) *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached responses",
		Long: `Delete cached RPC responses, for every endpoint or only --endpoint.

Example:
  suiql cache purge
  suiql cache purge --endpoint https://fullnode.testnet.sui.io:443`,
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

			n, err := st.RPCCache().Purge(cmd.Context(), endpoint)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to purge cache", err)
			}
			if rootOpts.Format == "json" {
				f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return f.Success(map[string]int64{"deleted": n})
			}
			printf(cmd, "deleted %d cached %s\n", n, plural(int(n), "response", "responses"))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "only purge responses from this endpoint URL")
	return cmd
}
