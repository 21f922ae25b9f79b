package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/git-revision/internal/config"
)

// errConfigExists is returned when config init would overwrite a file.
var errConfigExists = errors.New("configuration file already exists")

// attachConfigCommand adds `config init` to root.
func attachConfigCommand(root *cobra.Command) {
	var force bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)

			return nil
		},
	}

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	root.AddCommand(configCmd)
}
