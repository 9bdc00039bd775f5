package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/compiler"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Expr      string
	DumpDir   string
	KeepGoing bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Run a query script",
		Long: `Parse and execute one or more ';'-separated statements.

The program comes from a file, from stdin when the argument is '-', or from
--expr. By default the first failing statement aborts the run and nothing
is printed; with --keep-going every statement runs and failures are
reported in place.

Example:
  suiql run -e 'SELECT * FROM checkpoint 1000:1010 ON mainnet'
  suiql run --format json balances.sql
  echo 'SELECT * FROM tx 5ZfY... ON testnet;' | suiql run -`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, opts.Expr, args)
			if err != nil {
				return err
			}
			return runQueries(cmd, opts, source)
		},
	}

	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "program text instead of a file")
	cmd.Flags().StringVar(&opts.DumpDir, "dump-dir", "", "directory for >> dump files (default from config)")
	cmd.Flags().BoolVarP(&opts.KeepGoing, "keep-going", "k", false, "run every statement and report failures per statement")

	return cmd
}

func readSource(cmd *cobra.Command, expr string, args []string) (string, error) {
	switch {
	case expr != "" && len(args) > 0:
		return "", NewExitError(ExitCommandError, "pass either --expr or a file, not both")
	case expr != "":
		return expr, nil
	case len(args) == 0:
		return "", NewExitError(ExitCommandError, "no program: pass a file, '-' or --expr")
	case args[0] == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read stdin", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(args[0])
		if err != nil {
			return "", WrapExitError(ExitCommandError, "failed to read program", err)
		}
		return string(b), nil
	}
}

func runQueries(cmd *cobra.Command, opts *RunOptions, source string) error {
	sess, err := openSession(opts.RootOptions, cmd.ErrOrStderr(), opts.DumpDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}

	if opts.KeepGoing {
		report, err := sess.engine.RunEach(ctx, source)
		if err != nil {
			return queryError(out, err)
		}
		if err := out.Outcomes(report.Outcomes); err != nil {
			return WrapExitError(ExitFailure, "failed to write output", err)
		}
		if report.Err() != nil {
			return NewExitError(ExitFailure, "one or more statements failed")
		}
		return nil
	}

	results, err := sess.engine.Run(ctx, source)
	if err != nil {
		return queryError(out, err)
	}
	if err := out.Results(results); err != nil {
		return WrapExitError(ExitFailure, "failed to write output", err)
	}
	return nil
}

// queryError reports err through out and maps it to an exit code: parse
// errors are usage errors, everything else is a query failure.
func queryError(out *OutputFormatter, err error) error {
	if out.Format == "json" {
		_ = out.Error(err)
	}
	var pe *compiler.ParseError
	if errors.As(err, &pe) {
		return WrapExitError(ExitCommandError, "parse failed", err)
	}
	return WrapExitError(ExitFailure, "query failed", err)
}

// signalContext derives a context from the command's that is canceled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// printf writes to the command's stdout, ignoring errors like fmt.Printf.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
