// Package dfs defines the distributed filesystem capability that staging
// writes to, and a local-disk implementation of it.
package dfs

import (
	"io"
	"os"
	"time"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
)

// FileStatus describes one path on the distributed filesystem.
type FileStatus struct {
	Path        hadoop.Path
	IsDir       bool
	Length      int64
	Permission  os.FileMode
	Replication int
	ModTime     time.Time
}

// FileSystem is the subset of a cluster filesystem client used to stage
// files for the distributed cache.
type FileSystem interface {
	// URI returns the scheme and authority this filesystem serves.
	URI() hadoop.Path
	// Conf returns the cluster configuration bound to this filesystem.
	Conf() *hadoop.Configuration
	// MakeQualified adds this filesystem's scheme and authority to p.
	MakeQualified(p hadoop.Path) hadoop.Path

	Exists(p hadoop.Path) (bool, error)
	GetFileStatus(p hadoop.Path) (*FileStatus, error)
	// Create opens p for writing, creating parents. With overwrite false an
	// existing file is an error.
	Create(p hadoop.Path, overwrite bool) (io.WriteCloser, error)
	// Delete removes p. It returns false when p did not exist.
	Delete(p hadoop.Path, recursive bool) (bool, error)
	Mkdirs(p hadoop.Path) error
	// ListStatus lists the direct children of a directory, or the file
	// itself when p is a file.
	ListStatus(p hadoop.Path) ([]FileStatus, error)
	SetPermission(p hadoop.Path, perm os.FileMode) error
	SetReplication(p hadoop.Path, replication int) (bool, error)
	// CopyFromLocalFile copies a local file or directory tree to dst. When
	// dst is an existing directory the source is placed inside it.
	CopyFromLocalFile(src string, dst hadoop.Path) error
}
