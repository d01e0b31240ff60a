package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/unrolled/internal/config/loader"
	"github.com/dshills/unrolled/internal/engine/alloc"
	"github.com/dshills/unrolled/internal/engine/unrolled"
	"github.com/dshills/unrolled/internal/logging"
)

// MaxNodeCapacity bounds list.nodeCapacity.
const MaxNodeCapacity = unrolled.MaxNodeCapacity

// DefaultInstructionLimit is the Lua instruction budget per script.
const DefaultInstructionLimit = 10_000_000

// Config is the resolved ulist configuration.
type Config struct {
	List   ListConfig   `toml:"list" yaml:"list"`
	Log    LogConfig    `toml:"log" yaml:"log"`
	Replay ReplayConfig `toml:"replay" yaml:"replay"`
	Script ScriptConfig `toml:"script" yaml:"script"`
}

// ListConfig selects the shape of lists built by the tool.
type ListConfig struct {
	NodeCapacity int    `toml:"nodeCapacity" yaml:"nodeCapacity"`
	Allocator    string `toml:"allocator" yaml:"allocator"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// ReplayConfig controls the checks made after every scenario step.
type ReplayConfig struct {
	// Validate runs the structural invariant check.
	Validate bool `toml:"validate" yaml:"validate"`
	// Reference compares contents against container/list.
	Reference bool `toml:"reference" yaml:"reference"`
	// StopOnMismatch ends a scenario at its first mismatch.
	StopOnMismatch bool `toml:"stopOnMismatch" yaml:"stopOnMismatch"`
}

// ScriptConfig limits Lua scripts.
type ScriptConfig struct {
	// InstructionLimit of zero disables the limit.
	InstructionLimit int64 `toml:"instructionLimit" yaml:"instructionLimit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		List: ListConfig{
			NodeCapacity: unrolled.DefaultNodeCapacity,
			Allocator:    alloc.NameHeap,
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Replay: ReplayConfig{
			Validate:  true,
			Reference: true,
		},
		Script: ScriptConfig{
			InstructionLimit: DefaultInstructionLimit,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	env       bool
}

// WithFS reads files from fs instead of the OS.
func WithFS(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnvPrefix changes the environment prefix (default "ULIST_").
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv ignores environment overrides.
func WithoutEnv() Option {
	return func(o *options) {
		o.env = false
	}
}

// Load resolves defaults, the file at path (skipped when path is empty or
// the file is absent) and environment overrides, then validates the result.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		env:       true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged := make(map[string]any)
	if path != "" {
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		file, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, file)
	}
	if o.env {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overlays the settings in m onto c. Settings absent from m keep
// their current values.
func (c *Config) apply(m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding merged config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decoding merged config: %w", err)
	}
	return nil
}

// Validate checks every setting and reports all failures together.
func (c *Config) Validate() error {
	errs := &ValidationError{}

	if c.List.NodeCapacity < 1 || c.List.NodeCapacity > MaxNodeCapacity {
		errs.Add("list.nodeCapacity", fmt.Sprintf("must be between 1 and %d", MaxNodeCapacity), c.List.NodeCapacity)
	}
	if _, err := alloc.ByName[int](c.List.Allocator); err != nil {
		errs.Add("list.allocator", fmt.Sprintf("must be %q or %q", alloc.NameHeap, alloc.NamePool), c.List.Allocator)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs.Add("log.level", "unknown level", c.Log.Level)
	}
	if c.Log.Format != logging.FormatConsole && c.Log.Format != logging.FormatJSON {
		errs.Add("log.format", fmt.Sprintf("must be %q or %q", logging.FormatConsole, logging.FormatJSON), c.Log.Format)
	}
	if c.Script.InstructionLimit < 0 {
		errs.Add("script.instructionLimit", "must not be negative", c.Script.InstructionLimit)
	}

	return errs.AsError()
}
