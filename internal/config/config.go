package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/git-revision/internal/directive"
	"github.com/oshokin/git-revision/internal/logger"
	"github.com/oshokin/git-revision/internal/repository/snapshot"
	"github.com/oshokin/git-revision/internal/vcs"
)

// Config holds settings for a resolution run.
type Config struct {
	// SnapshotFile is the name of the snapshot metadata file looked up in the package root.
	SnapshotFile string `yaml:"snapshot_file"`
	// Constant is the name of the build-time constant receiving the revision.
	Constant string `yaml:"constant"`
	// Git is the git executable name or path.
	Git string `yaml:"git"`
	// Format selects the output rendering (cargo or ldflags).
	Format directive.Format `yaml:"format"`
	// Symbol is the Go variable set by the ldflags format.
	Symbol string `yaml:"symbol"`
	// Timeout bounds each git invocation; zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of diagnostics written to stderr.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "git-revision.yaml"

	// DefaultConstant is the constant defined when none is configured.
	DefaultConstant = "GIT_REVISION"

	// DefaultLogLevel keeps the build log quiet unless something is wrong.
	DefaultLogLevel = "warn"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidConstant is returned when the constant name cannot be used as an environment variable.
	errInvalidConstant = errors.New("invalid constant name")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("invalid log level")
	// errNegativeTimeout is returned when the git timeout is negative.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errInvalidSnapshotFile is returned when the snapshot filename contains a path.
	errInvalidSnapshotFile = errors.New("snapshot file must be a plain filename")
)

// Default returns settings with every field set to its default.
func Default() *Config {
	cfg := new(Config)

	// Validate only fills defaults on an empty config.
	_ = Validate(cfg) //nolint:errcheck // Defaults are always valid.

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOptional is like Load but returns defaults when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for empty fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.SnapshotFile == "" {
		settings.SnapshotFile = snapshot.DefaultFilename
	}

	if filepath.Base(settings.SnapshotFile) != settings.SnapshotFile {
		return fmt.Errorf("%w: %q", errInvalidSnapshotFile, settings.SnapshotFile)
	}

	if settings.Constant == "" {
		settings.Constant = DefaultConstant
	}

	if strings.ContainsAny(settings.Constant, "= \t\r\n") {
		return fmt.Errorf("%w: %q", errInvalidConstant, settings.Constant)
	}

	if settings.Git == "" {
		settings.Git = vcs.DefaultBinary
	}

	if settings.Format == "" {
		settings.Format = directive.FormatCargo
	}

	format, err := directive.ParseFormat(string(settings.Format))
	if err != nil {
		return err
	}

	settings.Format = format

	if settings.Symbol == "" {
		settings.Symbol = directive.DefaultSymbol
	}

	if settings.Timeout < 0 {
		return errNegativeTimeout
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, settings.LogLevel)
	}

	return nil
}
