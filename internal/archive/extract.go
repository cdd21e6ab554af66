// Package archive extracts packaged runtime archives into fresh local
// directories.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/internal/vfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/fsutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// Extractor unpacks zip archives.
type Extractor struct {
	tempDir string
	// removeAll deletes a partially extracted destination.
	removeAll func(string) (bool, error)
}

// NewExtractor creates an extractor that allocates scratch directories
// under tempDir. An empty tempDir means the process temp directory.
func NewExtractor(tempDir string) *Extractor {
	return &Extractor{tempDir: tempDir, removeAll: vfs.DeleteDirectory}
}

// ExtractToTemp extracts archive into a freshly named directory under the
// extractor's temp directory and returns that directory.
func (x *Extractor) ExtractToTemp(archive string) (string, error) {
	if archive == "" {
		return "", errclass.ErrNullArgument.WithMessage("archive is required")
	}
	dest := fsutil.UniqueName(x.tempDir)
	if err := x.Extract(archive, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Extract unpacks every entry of the zip archive into dest. dest must not
// exist. On failure dest is removed; if that removal fails too the error is
// ErrCleanupFailed wrapping the extraction cause.
func (x *Extractor) Extract(archive, dest string) error {
	ok, err := vfs.Exists(archive)
	if err != nil || !ok {
		return errclass.ErrInvalidArgument.WithMessagef("archive does not exist: %s", archive)
	}
	ok, err = vfs.Exists(dest)
	if err != nil {
		return errclass.ErrInvalidArgument.WithMessagef("cannot inspect destination %s", dest).Wrap(err)
	}
	if ok {
		return errclass.ErrInvalidArgument.WithMessagef("destination already exists: %s", dest)
	}
	if err := vfs.CreateFolder(dest); err != nil {
		return errclass.ErrExtractionFailed.WithMessagef("create %s", dest).Wrap(err)
	}

	if cause := unzip(archive, dest); cause != nil {
		gone, rmErr := x.removeAll(dest)
		if rmErr != nil || !gone {
			if rmErr == nil {
				rmErr = fmt.Errorf("%s still exists", dest)
			}
			return errclass.ErrCleanupFailed.
				WithMessagef("could not clean up %s after extraction error: %v", dest, rmErr).
				Wrap(cause)
		}
		return errclass.ErrExtractionFailed.WithMessagef("extract %s", archive).Wrap(cause)
	}
	return nil
}

func unzip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	buf := make([]byte, model.ExtractionBufferBytes)
	for _, f := range r.File {
		target, err := entryPath(dest, f.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("create parent of %s: %w", f.Name, err)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}
		if err := writeEntry(f, target, buf); err != nil {
			return err
		}
	}
	return nil
}

// entryPath resolves an entry name under dest and rejects names that would
// land outside it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string, buf []byte) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer out.Close()

	// Copy through buf; io.CopyBuffer may bypass it via os.File.ReadFrom.
	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write %s: %w", target, werr)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("read entry %s: %w", f.Name, rerr)
		}
	}
	return out.Close()
}
