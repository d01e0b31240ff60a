// Package main is the entry point for the ulist tool, which replays
// scenarios and runs Lua scripts against the unrolled list.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/dshills/unrolled/internal/codec"
	"github.com/dshills/unrolled/internal/config"
	"github.com/dshills/unrolled/internal/engine/unrolled"
	"github.com/dshills/unrolled/internal/logging"
	"github.com/dshills/unrolled/internal/replay"
	"github.com/dshills/unrolled/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	ConfigPath string
	Capacity   int
	Allocator  string
	LogLevel   string
	Dump       string
	DumpFormat codec.Format
	OutDir     string
	Files      []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, code, done := parseFlags(args, stdout, stderr)
	if done {
		return code
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, log: log, stdout: stdout, opts: opts, dump: opts.DumpFormat}
	failed := 0
	for _, file := range opts.Files {
		if err := a.runFile(ctx, file); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func parseFlags(args []string, stdout, stderr io.Writer) (opts options, code int, done bool) {
	fs := flag.NewFlagSet("ulist", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var showVersion, showHelp bool
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.IntVar(&opts.Capacity, "capacity", 0, "Node capacity (overrides config)")
	fs.StringVar(&opts.Allocator, "allocator", "", "Allocator: heap or pool (overrides config)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&opts.Dump, "dump", "", "Encode lists returned by scripts: json or cbor")
	fs.StringVar(&opts.OutDir, "out", "", "Directory for -dump output (default stdout)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.BoolVar(&showHelp, "help", false, "Show help message")
	fs.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "ulist - unrolled linked list replay and scripting tool\n\n")
		fmt.Fprintf(stderr, "Usage: ulist [options] files...\n\n")
		fmt.Fprintf(stderr, "Files ending in .yaml or .yml are replay scenarios; .lua files are scripts.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  ulist scenarios/*.yaml                 Replay scenarios\n")
		fmt.Fprintf(stderr, "  ulist -capacity 4 -allocator pool s.yaml\n")
		fmt.Fprintf(stderr, "  ulist -dump json build.lua             Print the returned list as JSON\n")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return opts, 0, true
		}
		return opts, 2, true
	}

	if showHelp {
		fs.Usage()
		return opts, 0, true
	}
	if showVersion {
		fmt.Fprintf(stdout, "ulist %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, true
	}

	if opts.Dump != "" {
		f, err := codec.ParseFormat(opts.Dump)
		if err != nil {
			fmt.Fprintf(stderr, "Error: -dump: %v\n", err)
			return opts, 2, true
		}
		opts.DumpFormat = f
	}

	opts.Files = fs.Args()
	if len(opts.Files) == 0 {
		fs.Usage()
		return opts, 2, true
	}
	return opts, 0, false
}

// loadConfig resolves the config file and environment, then applies flag
// overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Capacity != 0 {
		cfg.List.NodeCapacity = opts.Capacity
	}
	if opts.Allocator != "" {
		cfg.List.Allocator = opts.Allocator
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type app struct {
	cfg    *config.Config
	log    *zap.SugaredLogger
	stdout io.Writer
	opts   options
	dump   codec.Format
}

func (a *app) runFile(ctx context.Context, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return a.runScenario(ctx, path)
	case ".lua":
		return a.runScript(ctx, path)
	default:
		return fmt.Errorf("%s: unsupported file type (want .yaml, .yml or .lua)", path)
	}
}

func (a *app) runScenario(ctx context.Context, path string) error {
	rep, err := replay.NewRunner(a.cfg, a.log).RunFile(ctx, path)
	if err != nil {
		return err
	}

	status := "PASS"
	if !rep.OK() {
		status = "FAIL"
	}
	fmt.Fprintf(a.stdout, "%s %s steps=%d faults=%d mismatches=%d elapsed=%s run=%s\n",
		status, rep.Scenario, rep.Steps, rep.Faults, len(rep.Mismatches), rep.Elapsed, rep.RunID)
	for _, m := range rep.Mismatches {
		fmt.Fprintf(a.stdout, "  %v\n", m)
	}
	if !rep.OK() {
		return fmt.Errorf("%s: %d mismatches", path, len(rep.Mismatches))
	}
	return nil
}

func (a *app) runScript(ctx context.Context, path string) error {
	host, err := script.NewHost(
		script.WithNodeCapacity(a.cfg.List.NodeCapacity),
		script.WithAllocator(a.cfg.List.Allocator),
		script.WithInstructionLimit(a.cfg.Script.InstructionLimit),
		script.WithOutput(a.stdout),
		script.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	defer host.Close()

	l, err := host.RunFile(ctx, path)
	if err != nil {
		return err
	}
	if a.opts.Dump == "" || l == nil {
		return nil
	}
	return a.writeDump(path, l)
}

func (a *app) writeDump(path string, l *unrolled.List[any]) error {
	data, err := codec.Encode(a.dump, l)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if a.opts.OutDir == "" {
		if _, err := a.stdout.Write(data); err != nil {
			return err
		}
		if a.dump == codec.FormatJSON {
			_, err = fmt.Fprintln(a.stdout)
		}
		return err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "." + a.dump.String()
	out := filepath.Join(a.opts.OutDir, name)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	a.log.Infow("dump written", "script", path, "file", out, "bytes", len(data))
	return nil
}
