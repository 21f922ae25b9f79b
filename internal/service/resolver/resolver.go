package resolver

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oshokin/git-revision/internal/config"
	"github.com/oshokin/git-revision/internal/directive"
	"github.com/oshokin/git-revision/internal/domain/revision"
	"github.com/oshokin/git-revision/internal/logger"
	"github.com/oshokin/git-revision/internal/repository/snapshot"
	"github.com/oshokin/git-revision/internal/vcs"
)

// Files inside the git directory whose changes can change the described revision:
// index marks the tree dirty, HEAD moves to another ref or commit,
// refs moves the commit the current branch points to.
var watchedGitPaths = []string{"index", "HEAD", "refs"} //nolint:gochecknoglobals // Fixed, ordered list.

// Resolver determines the revision of a package directory.
type Resolver struct {
	// tool answers git questions.
	tool vcs.Tool
	// snapshotFile is the metadata filename looked up in the start directory.
	snapshotFile string
	// constant is the name of the emitted build-time constant.
	constant string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTool replaces the git tool.
func WithTool(tool vcs.Tool) Option {
	return func(r *Resolver) {
		if tool != nil {
			r.tool = tool
		}
	}
}

// WithSnapshotFile changes the snapshot metadata filename.
func WithSnapshotFile(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.snapshotFile = name
		}
	}
}

// WithConstant changes the name of the emitted constant.
func WithConstant(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.constant = name
		}
	}
}

// New creates a Resolver using the git binary on PATH unless configured otherwise.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		tool:         vcs.NewExecTool(),
		snapshotFile: snapshot.DefaultFilename,
		constant:     config.DefaultConstant,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve finds the revision for dir and emits it.
//
// Snapshot metadata in dir wins outright and nothing else is emitted.
// Otherwise rerun directives for the git directory are emitted first, then
// the constant if git could describe the commit. Lookup failures become
// warnings; only a failed sink write is returned.
func (r *Resolver) Resolve(ctx context.Context, emitter directive.Emitter, dir string) error {
	ctx = logger.WithKV(ctx, "dir", dir)

	rev, source, ok, err := r.lookup(ctx, emitter, dir)
	if err != nil || !ok {
		return err
	}

	logger.InfoKV(ctx, "Revision resolved",
		"revision", rev,
		"commit", revision.Commit(rev),
		"source", source,
		"dirty", revision.IsDirty(rev))

	return emitter.SetEnv(r.constant, rev)
}

// lookup walks the fallback chain: snapshot metadata, then the live repository.
func (r *Resolver) lookup(
	ctx context.Context,
	emitter directive.Emitter,
	dir string,
) (string, revision.Source, bool, error) {
	if rev, ok := r.fromSnapshot(ctx, dir); ok {
		return rev, revision.SourceSnapshot, true, nil
	}

	rev, ok, err := r.fromRepository(ctx, emitter, dir)
	if err != nil || !ok {
		return "", "", false, err
	}

	return rev, revision.SourceRepository, true, nil
}

// fromSnapshot reads the packaged metadata. Any failure means "not available".
func (r *Resolver) fromSnapshot(ctx context.Context, dir string) (string, bool) {
	repo := snapshot.NewFileRepository(dir, r.snapshotFile)

	s, err := repo.Load(ctx)
	if err != nil {
		logger.DebugKV(ctx, "Snapshot metadata unavailable", "path", repo.Path(), "reason", err)
		return "", false
	}

	return s.Revision(), true
}

// fromRepository asks git for the revision of the checkout containing dir.
func (r *Resolver) fromRepository(ctx context.Context, emitter directive.Emitter, dir string) (string, bool, error) {
	gitDir, err := r.tool.Run(ctx, vcs.OpGitDir, dir)
	if err != nil {
		logger.DebugKV(ctx, "Git directory lookup failed", "error", err)

		return "", false, emitter.Warning(
			fmt.Sprintf("Error getting git directory to get git revision: %v", err))
	}

	if err = r.watchGitDir(emitter, strings.TrimSpace(string(gitDir))); err != nil {
		return "", false, err
	}

	described, err := r.tool.Run(ctx, vcs.OpDescribe, dir)
	if err != nil {
		logger.DebugKV(ctx, "Git describe failed", "error", err)

		return "", false, emitter.Warning(
			fmt.Sprintf("Error getting git revision from %q: %v", dir, err))
	}

	if !utf8.Valid(described) {
		logger.DebugKV(ctx, "Git describe output is not valid UTF-8")
		return "", false, nil
	}

	// Drop the line terminator git prints; the revision itself is used as is.
	rev := strings.TrimRight(string(described), "\r\n")
	if rev == "" {
		return "", false, nil
	}

	return rev, true, nil
}

// watchGitDir emits rerun directives for the git state that determines the revision.
func (r *Resolver) watchGitDir(emitter directive.Emitter, gitDir string) error {
	for _, name := range watchedGitPaths {
		if err := emitter.RerunIfChanged(gitDir + "/" + name); err != nil {
			return err
		}
	}

	return nil
}
