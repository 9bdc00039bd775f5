// Package config loads suiql settings from YAML or CUE files.
//
// Files are validated against the embedded CUE schema (schema.cue) before
// they are applied over Default. Unknown keys are rejected.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/chain"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/engine"
	"github.com/sand-worm-labs/sandworm-sui-ql/internal/rpc"
)

//go:embed schema.cue
var schemaCUE string

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "SUIQL_CONFIG"

// Config is the full set of process settings.
type Config struct {
	Chains  map[string]string `yaml:"chains" json:"chains,omitempty"`
	RPC     RPC               `yaml:"rpc" json:"rpc"`
	Engine  Engine            `yaml:"engine" json:"engine"`
	Store   Store             `yaml:"store" json:"store"`
	Cache   Toggle            `yaml:"cache" json:"cache"`
	History Toggle            `yaml:"history" json:"history"`
	Log     Log               `yaml:"log" json:"log"`
	Serve   Serve             `yaml:"serve" json:"serve"`
}

// RPC configures the fullnode client.
type RPC struct {
	Timeout   Duration `yaml:"timeout" json:"timeout"`
	Retries   uint64   `yaml:"retries" json:"retries"`
	Backoff   Duration `yaml:"backoff" json:"backoff"`
	RateLimit float64  `yaml:"rate_limit" json:"rate_limit"`
	Burst     int      `yaml:"burst" json:"burst"`
}

// Engine configures query execution.
type Engine struct {
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
	MaxRows     int    `yaml:"max_rows" json:"max_rows"`
	DumpDir     string `yaml:"dump_dir" json:"dump_dir"`
}

// Store locates the SQLite database shared by the cache and history.
type Store struct {
	Path string `yaml:"path" json:"path,omitempty"`
}

// Toggle is a section with a single enabled switch.
type Toggle struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level" json:"level"`
}

// Serve configures the HTTP API.
type Serve struct {
	Addr      string  `yaml:"addr" json:"addr"`
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" json:"burst"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Error reports a config file that could not be read, parsed or validated.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		RPC: RPC{
			Timeout:   Duration(rpc.DefaultTimeout),
			Retries:   rpc.DefaultRetries,
			Backoff:   Duration(rpc.DefaultBackoff),
			RateLimit: 0,
			Burst:     rpc.DefaultBurst,
		},
		Engine: Engine{
			Concurrency: engine.DefaultConcurrency,
			MaxRows:     engine.DefaultMaxRows,
			DumpDir:     ".",
		},
		Store: Store{Path: defaultStorePath()},
		Log:   Log{Level: "info"},
		Serve: Serve{Addr: "127.0.0.1:8080", RateLimit: 5, Burst: 10},
	}
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "suiql.db"
	}
	return filepath.Join(dir, "suiql", "suiql.db")
}

// Resolve picks the config file: an explicit path, then $SUIQL_CONFIG, then
// $XDG_CONFIG_HOME/suiql/config.yaml. The bool reports whether the path came
// from the user; a missing default file is not an error.
func Resolve(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "suiql", "config.yaml"), false
}

// LoadDefault resolves the config file with Resolve and loads it. Without a
// file it returns Default.
func LoadDefault(explicit string) (Config, error) {
	path, required := Resolve(explicit)
	if path == "" {
		return Default(), nil
	}
	if !required {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
	}
	return Load(path)
}

// Load reads a .yaml, .yml or .cue file and applies it over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		cfg, err = parseCUE(path, data)
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		err = fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return Config{}, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

func parseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseCUE(path string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return Config{}, err
	}
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compile cue: %w", err)
	}
	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validate: %w", err)
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return Config{}, fmt.Errorf("export cue: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode cue: %w", err)
	}
	return cfg, nil
}

func compileSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// Validate checks c against the embedded schema.
func (c Config) Validate() error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return err
	}
	v := schema.Unify(ctx.CompileBytes(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Overrides returns the configured endpoint per named chain.
func (c Config) Overrides() chain.Overrides {
	if len(c.Chains) == 0 {
		return nil
	}
	out := make(chain.Overrides, len(c.Chains))
	for name, url := range c.Chains {
		ch, err := chain.Parse(name)
		if err != nil {
			continue
		}
		out[ch] = url
	}
	return out
}

// RPCOptions maps the rpc section onto client options.
func (c Config) RPCOptions() rpc.Options {
	opts := rpc.DefaultOptions()
	opts.Timeout = time.Duration(c.RPC.Timeout)
	opts.Retries = c.RPC.Retries
	opts.Backoff = time.Duration(c.RPC.Backoff)
	opts.RateLimit = c.RPC.RateLimit
	opts.Burst = c.RPC.Burst
	return opts
}

// LogLevel parses log.level. Unknown levels fall back to info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
