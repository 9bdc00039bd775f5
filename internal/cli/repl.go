package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
)

const (
	replPrompt         = "suiql> "
	replContinuePrompt = "   ..> "
)

const replHelp = `Statements run when a line ends with ';'.
  SELECT <fields|*> FROM <entity> [ids] [WHERE filters] ON <chains> [>> file.ext]
Commands: help, fields, exit`

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive query shell",
		Long: `Start an interactive shell. Input accumulates until a line ends with
';', then every statement runs and each one's rows or error are printed.
A failed statement does not stop the others.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, rootOpts)
		},
	}
}

// lineReader is the input side of the shell: a raw-mode terminal or a plain
// line scanner.
type lineReader interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

type scannerReader struct {
	sc *bufio.Scanner
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scannerReader) SetPrompt(string) {}

func runRepl(cmd *cobra.Command, opts *RootOptions) error {
	in := cmd.InOrStdin()
	out := cmd.OutOrStdout()

	var reader lineReader
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to enter raw mode", err)
		}
		defer func() { _ = term.Restore(int(f.Fd()), state) }()

		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, out}, replPrompt)
		reader, out = t, t
	} else {
		reader = &scannerReader{sc: bufio.NewScanner(in)}
	}

	sess, err := openSession(opts, cmd.ErrOrStderr(), "")
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signalContext(cmd)
	defer stop()

	f := &OutputFormatter{Format: opts.Format, Writer: out}
	return repl(ctx, reader, f, sess.engine)
}

// repl reads statements until EOF or exit. Input left without a closing ';'
// at EOF still runs.
func repl(ctx context.Context, r lineReader, out *OutputFormatter, eng *engine.Engine) error {
	var pending strings.Builder
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(pending.String()) != "" {
				evaluate(ctx, out, eng, pending.String())
			}
			return nil
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read input", err)
		}

		trimmed := strings.TrimSpace(line)
		if pending.Len() == 0 {
			switch strings.TrimSuffix(strings.ToLower(trimmed), ";") {
			case "":
				continue
			case "exit", "quit":
				return nil
			case "help":
				fmt.Fprintln(out.Writer, replHelp)
				continue
			case "fields":
				printFields(out.Writer, nil)
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteByte('\n')
		if !strings.HasSuffix(trimmed, ";") {
			r.SetPrompt(replContinuePrompt)
			continue
		}

		source := pending.String()
		pending.Reset()
		r.SetPrompt(replPrompt)
		evaluate(ctx, out, eng, source)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func evaluate(ctx context.Context, out *OutputFormatter, eng *engine.Engine, source string) {
	report, err := eng.RunEach(ctx, source)
	if err != nil {
		_ = out.Error(err)
		return
	}
	_ = out.Outcomes(report.Outcomes)
}
