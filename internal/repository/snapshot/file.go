package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"

	"github.com/oshokin/git-revision/internal/domain/revision"
)

// DefaultFilename is the snapshot metadata file cargo writes into published packages.
const DefaultFilename = ".cargo_vcs_info.json"

// decodeFlags make keys match struct tags exactly: "GIT" is not "git".
const decodeFlags = json.DontMatchCaseInsensitiveStructFields

// FileRepository reads snapshot metadata from a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the metadata file.
	path string
}

var (
	// ErrNotFound is returned when the metadata file does not exist.
	ErrNotFound = errors.New("snapshot metadata not found")
	// ErrNoCommit is returned when the metadata has no git.sha1 key.
	ErrNoCommit = errors.New("snapshot metadata has no git sha1")
	// errTrailingData is returned when the file holds more than one JSON value.
	errTrailingData = errors.New("trailing data after snapshot metadata")
)

// NewFileRepository creates a repository for the named file inside dir.
// An empty filename selects DefaultFilename.
func NewFileRepository(dir, filename string) *FileRepository {
	if filename == "" {
		filename = DefaultFilename
	}

	return &FileRepository{
		path: filepath.Join(dir, filename),
	}
}

// Path returns the location of the metadata file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and decodes the metadata file.
// A present but empty git.sha1 is returned as is.
func (r *FileRepository) Load(_ context.Context) (*revision.Snapshot, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot metadata: %w", err)
	}

	var s revision.Snapshot

	rest, err := json.Parse(contents, &s, decodeFlags)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot metadata: %w", err)
	}

	if len(rest) > 0 {
		return nil, fmt.Errorf("decode snapshot metadata: %w", errTrailingData)
	}

	if !s.HasRevision() {
		return nil, ErrNoCommit
	}

	return &s, nil
}
