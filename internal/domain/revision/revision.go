package revision

import "strings"

// DirtySuffix is appended by git to the revision when the working tree has local changes.
const DirtySuffix = "-dirty"

// Source identifies where a resolved revision came from.
type Source string

const (
	// SourceSnapshot means the revision was read from packaged snapshot metadata.
	SourceSnapshot Source = "snapshot"
	// SourceRepository means the revision was described by git from a live checkout.
	SourceRepository Source = "repository"
)

// Snapshot is VCS metadata written by a packaging step.
// Unknown fields in the file are ignored.
type Snapshot struct {
	// Git holds the git section of the metadata.
	Git SnapshotGit `json:"git"`
}

// SnapshotGit is the git section of Snapshot.
type SnapshotGit struct {
	// SHA1 is the commit the package was produced from.
	// Nil when the key is missing; an empty string is a recorded value.
	SHA1 *string `json:"sha1"`
}

// HasRevision reports whether the snapshot records a commit, even an empty one.
func (s *Snapshot) HasRevision() bool {
	return s != nil && s.Git.SHA1 != nil
}

// Revision returns the commit recorded in the snapshot.
func (s *Snapshot) Revision() string {
	if !s.HasRevision() {
		return ""
	}

	return *s.Git.SHA1
}

// IsDirty reports whether rev carries the dirty marker.
func IsDirty(rev string) bool {
	return strings.HasSuffix(rev, DirtySuffix)
}

// Commit strips the dirty marker from rev.
func Commit(rev string) string {
	return strings.TrimSuffix(rev, DirtySuffix)
}
