package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/config"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/store"
)

// session is what a query command needs: the loaded config, a logger, the
// optional store and an engine wired to all of them.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	engine *engine.Engine
}

// loadConfig reads --config (or the default location) and builds the logger.
func loadConfig(opts *RootOptions, errOut io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadDefault(opts.Config)
	if err != nil {
		return config.Config{}, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	level := cfg.LogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// openStore opens the SQLite store at path, creating its directory.
func openStore(path string, logger *slog.Logger) (*store.Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create store directory", err)
		}
	}
	logger.Debug("opening store", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return st, nil
}

// openSession wires config, store and engine. dumpDir, when set, replaces
// engine.dump_dir from the config.
func openSession(opts *RootOptions, errOut io.Writer, dumpDir string) (*session, error) {
	cfg, logger, err := loadConfig(opts, errOut)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger}

	if cfg.Cache.Enabled || cfg.History.Enabled {
		st, err := openStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, err
		}
		s.store = st
	}

	rpcOpts := cfg.RPCOptions()
	rpcOpts.Logger = logger
	if cfg.Cache.Enabled {
		rpcOpts.Cache = s.store.RPCCache()
	}
	var dialer rpc.Dialer = rpc.NewDialer(rpcOpts)
	if opts.Dialer != nil {
		dialer = opts.Dialer
	}

	if dumpDir == "" {
		dumpDir = cfg.Engine.DumpDir
	}
	engineOpts := []engine.Option{
		engine.WithOverrides(cfg.Overrides()),
		engine.WithConcurrency(cfg.Engine.Concurrency),
		engine.WithMaxRows(cfg.Engine.MaxRows),
		engine.WithDumpDir(dumpDir),
		engine.WithLogger(logger),
	}
	if cfg.History.Enabled {
		engineOpts = append(engineOpts, engine.WithHistory(s.store))
	}
	if opts.Now != nil {
		engineOpts = append(engineOpts, engine.WithClock(opts.Now))
	}
	s.engine = engine.New(dialer, engineOpts...)

	logger.Debug("session ready",
		"cache", cfg.Cache.Enabled,
		"history", cfg.History.Enabled,
		"concurrency", cfg.Engine.Concurrency,
		"max_rows", cfg.Engine.MaxRows,
	)
	return s, nil
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing store", "error", err)
	}
}
