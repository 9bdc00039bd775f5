package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/result"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A query failed while executing
	ExitCommandError = 2 // Usage, config or parse error
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders query results as aligned tables or JSON.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostics in table mode (defaults to Writer)
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // "MISSING_IDS", "INVALID_FIELD", ...
	Message string `json:"message"` // human-readable message
}

// Success outputs a payload. Table mode prints it with fmt.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(err error) error {
	code := engine.Code(err)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: err.Error()},
		})
	}
	_, werr := fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", code, err)
	return werr
}

// Results prints every result in order.
func (f *OutputFormatter) Results(results []result.QueryResult) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: results})
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		if err := f.table(r.Result); err != nil {
			return err
		}
	}
	return nil
}

// outcomeJSON flattens engine.Outcome for encoding.
type outcomeJSON struct {
	Result result.ExpressionResult `json:"result,omitempty"`
	Error  *CLIError               `json:"error,omitempty"`
}

// Outcomes prints per-expression results and errors from RunEach.
func (f *OutputFormatter) Outcomes(outcomes []engine.Outcome) error {
	if f.Format == "json" {
		out := make([]outcomeJSON, len(outcomes))
		for i, o := range outcomes {
			if o.Err != nil {
				out[i].Error = &CLIError{Code: engine.Code(o.Err), Message: o.Err.Error()}
				continue
			}
			out[i].Result = o.Result.Result
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: out})
	}
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		if o.Err != nil {
			if err := f.Error(o.Err); err != nil {
				return err
			}
			continue
		}
		if err := f.table(o.Result.Result); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) table(r result.ExpressionResult) error {
	header, rows := result.Table(r)
	if len(header) > 0 {
		tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(f.Writer, "(%d %s)\n", r.Len(), plural(r.Len(), "row", "rows"))
	return err
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
