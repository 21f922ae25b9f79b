package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/git-revision/internal/config"
	"github.com/oshokin/git-revision/internal/directive"
	"github.com/oshokin/git-revision/internal/service/resolver"
	"github.com/oshokin/git-revision/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// overrides collects flag values applied on top of the configuration file.
	overrides config.Config

	// rootCmd represents the base command for resolving a revision.
	rootCmd = &cobra.Command{
		Use:   "git-revision [package-dir]",
		Short: "Resolve the git revision of a package and print build directives.",
		Long: `Resolves the git revision of the package rooted at package-dir (default: the current directory)
and prints directives for the build pipeline on stdout.

Snapshot metadata left by a packaging step (.cargo_vcs_info.json) takes precedence.
Otherwise git is asked for the revision of the enclosing checkout, and rerun
directives for its index, HEAD and refs are printed before the revision.
Failures to determine a revision are reported as warnings and never fail the build.

Call it from a build.rs script and forward its output, or use --format ldflags
to get a -X flag for go build.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var dir string
			if len(args) > 0 {
				dir = args[0]
			}

			options := &resolver.Options{
				ConfigPath: configPath,
				Dir:        dir,
				Overrides:  overrides,
				Output:     cmd.OutOrStdout(),
			}

			return resolver.Run(ctx, options)
		},
	}
)

// Execute runs the git-revision CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	attachConfigCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.VarP(&overrides.Format, "format", "f", "output format: cargo or ldflags")
	flags.StringVar(&overrides.Constant, "constant", "", "name of the build-time constant (default "+config.DefaultConstant+")")
	flags.StringVar(&overrides.SnapshotFile, "snapshot-file", "", "snapshot metadata filename in the package root")
	flags.StringVar(&overrides.Git, "git", "", "git executable to run")
	flags.StringVar(&overrides.Symbol, "symbol", "", "Go variable set by the ldflags format (default "+directive.DefaultSymbol+")")
	flags.DurationVar(&overrides.Timeout, "timeout", 0, "limit for each git invocation (0 means none)")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "diagnostics level on stderr: debug, info, warn, error")
}
