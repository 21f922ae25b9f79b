package integration

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/git-revision/internal/directive"
	"github.com/oshokin/git-revision/internal/service/resolver"
	"github.com/oshokin/git-revision/internal/vcs"
)

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(vcs.DefaultBinary); err != nil {
		t.Skip("git is not installed")
	}
}

// git runs a git command inside dir with an isolated identity.
func git(t *testing.T, dir string, args ...string) {
	t.Helper()

	args = append([]string{
		"-c", "user.name=Revision Test",
		"-c", "user.email=revision@example.com",
		"-c", "commit.gpgsign=false",
		"-c", "init.defaultBranch=main",
	}, args...)

	cmd := exec.Command(vcs.DefaultBinary, args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// initRepo creates a repository with one committed file and returns its root.
func initRepo(t *testing.T) string {
	t.Helper()

	// Resolve symlinks so paths match what git reports.
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	git(t, dir, "init")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme"), []byte("hello"), 0o600))
	git(t, dir, "add", "readme")
	git(t, dir, "commit", "-m", "test")

	return dir
}

// resolve runs the resolver with the real git binary and returns the cargo output.
func resolve(t *testing.T, dir string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var buf bytes.Buffer

	require.NoError(t, resolver.New().Resolve(ctx, directive.NewCargoEmitter(&buf), dir))

	return buf.String()
}

// TestResolve_CleanRepository emits rerun directives and a plain commit hash.
func TestResolve_CleanRepository(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)

	expected := regexp.MustCompile(`^cargo:rerun-if-changed=\.git/index
cargo:rerun-if-changed=\.git/HEAD
cargo:rerun-if-changed=\.git/refs
cargo:rustc-env=GIT_REVISION=[0-9a-f]+
$`)
	require.Regexp(t, expected, resolve(t, dir))
}

// TestResolve_DirtyRepository appends the dirty marker for modified tracked files.
func TestResolve_DirtyRepository(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme"), []byte("dirty"), 0o600))

	require.Regexp(t, regexp.MustCompile(`(?m)^cargo:rustc-env=GIT_REVISION=[0-9a-f]+-dirty$`), resolve(t, dir))
}

// TestResolve_Subdirectory points rerun directives at the repository's git directory.
func TestResolve_Subdirectory(t *testing.T) {
	t.Parallel()
	requireGit(t)

	root := initRepo(t)
	sub := filepath.Join(root, "subdir")
	require.NoError(t, os.Mkdir(sub, 0o700))

	gitDir := regexp.QuoteMeta(filepath.Join(root, ".git"))
	expected := regexp.MustCompile(`^cargo:rerun-if-changed=` + gitDir + `/index
cargo:rerun-if-changed=` + gitDir + `/HEAD
cargo:rerun-if-changed=` + gitDir + `/refs
cargo:rustc-env=GIT_REVISION=[0-9a-f]+
$`)
	require.Regexp(t, expected, resolve(t, sub))
}

// TestResolve_TaggedRepository ignores tags and still reports the full hash.
func TestResolve_TaggedRepository(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)
	git(t, dir, "tag", "-a", "v1.0.0", "-m", "release")

	require.Regexp(t, regexp.MustCompile(`(?m)^cargo:rustc-env=GIT_REVISION=[0-9a-f]+$`), resolve(t, dir))
}

// TestResolve_SnapshotInsideRepository prefers snapshot metadata over the checkout.
func TestResolve_SnapshotInsideRepository(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cargo_vcs_info.json"), []byte(`{
  "git": {
    "sha1": "0c5255b6f47649305fcb68edccb285510aec71a7"
  },
  "path_in_vcs": ""
}`), 0o600))

	require.Equal(t, "cargo:rustc-env=GIT_REVISION=0c5255b6f47649305fcb68edccb285510aec71a7\n", resolve(t, dir))
}

// TestResolve_Idempotent gives the same output for an unchanged repository.
func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)
	require.Equal(t, resolve(t, dir), resolve(t, dir))
}

// TestResolve_EmptyRepository warns when there is no commit to describe.
func TestResolve_EmptyRepository(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	git(t, dir, "init")

	out := resolve(t, dir)
	require.True(t, strings.HasPrefix(out, "cargo:rerun-if-changed=.git/index\n"+
		"cargo:rerun-if-changed=.git/HEAD\n"+
		"cargo:rerun-if-changed=.git/refs\n"+
		"cargo:warning=Error getting git revision from "), out)
	require.NotContains(t, out, "rustc-env")
	require.Equal(t, 4, strings.Count(out, "\n"))
}

// TestResolve_NotARepository warns and emits nothing else.
func TestResolve_NotARepository(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	// Stop git from finding a repository above the temporary directory.
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	out := resolve(t, dir)
	require.Regexp(t, regexp.MustCompile(`^cargo:warning=Error getting git directory to get git revision: [^\n]+\n$`), out)
	require.NotContains(t, out, "rustc-env")
	require.NotContains(t, out, "rerun-if-changed")
}

// TestResolve_MissingGit warns when the git binary cannot be started.
func TestResolve_MissingGit(t *testing.T) {
	t.Parallel()

	tool := vcs.NewExecTool(vcs.WithBinary(filepath.Join(t.TempDir(), "git")))

	var buf bytes.Buffer

	err := resolver.New(resolver.WithTool(tool)).
		Resolve(context.Background(), directive.NewCargoEmitter(&buf), t.TempDir())
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^cargo:warning=Error getting git directory to get git revision: [^\n]+\n$`), buf.String())
}
