package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/git-revision/internal/config"
)

// TestRootCommand_Snapshot resolves a packaged directory through the CLI.
func TestRootCommand_Snapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cargo_vcs_info.json"),
		[]byte(`{"git":{"sha1":"abc123"}}`), 0o600))

	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, config.Default()))

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{dir, "--config", cfgPath, "--format", "ldflags", "--symbol", "main.rev"})

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)

		overrides = config.Config{}
		configPath = ""
	})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, "-X 'main.rev=abc123'\n", out.String())
}

// TestConfigInit writes defaults once and refuses to overwrite without --force.
func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "git-revision.yaml")

	run := func(args ...string) error {
		root := &cobra.Command{Use: "git-revision"}
		attachConfigCommand(root)
		root.SetOut(new(bytes.Buffer))
		root.SetErr(new(bytes.Buffer))
		root.SetArgs(append([]string{"config", "init", path}, args...))

		return root.Execute()
	}

	require.NoError(t, run())

	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), loaded)

	require.ErrorIs(t, run(), errConfigExists)
	require.NoError(t, run("--force"))
}
