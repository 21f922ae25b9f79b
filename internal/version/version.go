package version

import (
	"fmt"
	"runtime/debug"
)

// Unknown is reported when no revision could be determined.
const Unknown = "unknown"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
	// GitRevision is the full revision produced by `git-revision --format ldflags`.
	// It may be empty when resolution found nothing.
	GitRevision = ""
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Revision returns GitRevision when injected, otherwise the VCS stamp the Go
// toolchain embeds in the binary, otherwise Unknown.
func Revision() string {
	if GitRevision != "" {
		return GitRevision
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Unknown
	}

	return revisionFromSettings(info.Settings)
}

// revisionFromSettings builds "<vcs.revision>[-dirty]" from build settings.
func revisionFromSettings(settings []debug.BuildSetting) string {
	var (
		rev   string
		dirty bool
	)

	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if rev == "" {
		return Unknown
	}

	if dirty {
		rev += "-dirty"
	}

	return rev
}

// Full returns a human-readable version string with commit, revision and build time.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, revision: %s, built at: %s", Version, Commit, Revision(), BuildTime)
}
