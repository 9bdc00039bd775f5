package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/api"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string

	// Ready, when set, receives the bound address once listening (for testing).
	Ready chan<- net.Addr
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve queries over HTTP",
		Long: `Start the HTTP API.

  POST /v1/query           program text in the body, JSON outcomes back
  GET  /v1/fields          field names per entity
  GET  /healthz            liveness

Example:
  suiql serve --addr :8080
  curl -d 'SELECT * FROM checkpoint 1 ON mainnet' localhost:8080/v1/query`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config serve.addr)")
	return cmd
}

func serve(cmd *cobra.Command, opts *ServeOptions) error {
	sess, err := openSession(opts.RootOptions, cmd.ErrOrStderr(), "")
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := opts.Addr
	if addr == "" {
		addr = sess.cfg.Serve.Addr
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := &http.Server{
		Handler: api.NewHandler(sess.engine, api.Options{
			RateLimit: sess.cfg.Serve.RateLimit,
			Burst:     sess.cfg.Serve.Burst,
			Logger:    sess.logger,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	sess.logger.Info("HTTP API listening", "addr", ln.Addr().String())
	if opts.Ready != nil {
		opts.Ready <- ln.Addr()
	}

	select {
	case err := <-errCh:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	sess.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
