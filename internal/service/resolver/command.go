package resolver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/git-revision/internal/config"
	"github.com/oshokin/git-revision/internal/directive"
	"github.com/oshokin/git-revision/internal/logger"
	"github.com/oshokin/git-revision/internal/vcs"
)

// Options contains inputs for the resolver entry point.
type Options struct {
	// ConfigPath is the settings file; empty means git-revision.yaml if present, else defaults.
	ConfigPath string
	// Dir is the package root to resolve; empty means the working directory.
	Dir string
	// Overrides are applied on top of the loaded settings when non-zero.
	Overrides config.Config
	// Output receives the directives; nil means stdout.
	Output io.Writer
	// Tool replaces the git subprocess, mainly for tests.
	Tool vcs.Tool
}

// Run loads settings, resolves the revision of opts.Dir and writes directives to opts.Output.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "git-revision")

	cfg, err := loadSettings(opts)
	if err != nil {
		return err
	}

	// Validate guarantees the level parses.
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.WithLevel(level)))

	dir, err := startDir(opts.Dir)
	if err != nil {
		return err
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	emitter, err := directive.New(ctx, cfg.Format, output, cfg.Symbol)
	if err != nil {
		return err
	}

	tool := opts.Tool
	if tool == nil {
		tool = vcs.NewExecTool(vcs.WithBinary(cfg.Git), vcs.WithTimeout(cfg.Timeout))
	}

	r := New(
		WithTool(tool),
		WithSnapshotFile(cfg.SnapshotFile),
		WithConstant(cfg.Constant),
	)

	logger.DebugKV(ctx, "Resolving revision", "dir", dir, "format", cfg.Format, "git", cfg.Git)

	if err = r.Resolve(ctx, emitter, dir); err != nil {
		return fmt.Errorf("emit directives: %w", err)
	}

	return nil
}

// loadSettings reads the settings file and applies command-line overrides.
// Only the default settings file may be absent; an explicit path must exist.
func loadSettings(opts *Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if opts.ConfigPath == "" {
		cfg, err = config.LoadOptional(config.DefaultConfigFilename)
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}

	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	applyOverrides(cfg, &opts.Overrides)

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// applyOverrides copies every non-zero field of o into cfg.
func applyOverrides(cfg, o *config.Config) {
	if o.SnapshotFile != "" {
		cfg.SnapshotFile = o.SnapshotFile
	}

	if o.Constant != "" {
		cfg.Constant = o.Constant
	}

	if o.Git != "" {
		cfg.Git = o.Git
	}

	if o.Format != "" {
		cfg.Format = o.Format
	}

	if o.Symbol != "" {
		cfg.Symbol = o.Symbol
	}

	if o.Timeout != 0 {
		cfg.Timeout = o.Timeout
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
}

// startDir returns dir, or the working directory when dir is empty.
func startDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Clean(dir), nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	return wd, nil
}
