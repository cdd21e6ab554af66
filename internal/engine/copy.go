package engine

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/fsutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// CopyEngine performs a full byte copy of files and directories.
type CopyEngine struct{}

// NewCopyEngine creates a new CopyEngine.
func NewCopyEngine() *CopyEngine {
	return &CopyEngine{}
}

// Name returns the engine type.
func (e *CopyEngine) Name() model.EngineType {
	return model.EngineCopy
}

// Clone recursively copies src to dst.
func (e *CopyEngine) Clone(src, dst string) (*CloneResult, error) {
	result := &CloneResult{}
	err := walkClone(src, dst, func(path, target string, info fs.FileInfo) error {
		n, err := copyFile(path, target, info)
		if err != nil {
			return err
		}
		result.Files++
		result.Bytes += n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("copy: %w", err)
	}
	return result, nil
}

// walkClone mirrors the directory structure of src at dst and hands every
// regular file to fileFn. Symlinks are recreated, not followed.
func walkClone(src, dst string, fileFn func(path, target string, info fs.FileInfo) error) error {
	info, err := os.Lstat(src)
	if err != nil {
		return fmt.Errorf("stat src: %w", err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("destination exists: %s", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir parent %s: %w", filepath.Dir(dst), err)
	}

	if !info.IsDir() {
		if info.Mode()&os.ModeSymlink != 0 {
			return copySymlink(src, dst)
		}
		return fileFn(src, dst, info)
	}

	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}
			return nil
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(path, target)
		default:
			return fileFn(path, target, info)
		}
	})
	if err != nil {
		return err
	}
	return fsutil.FsyncDir(dst)
}

func copyFile(src, dst string, info fs.FileInfo) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open src %s: %w", src, err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create dst %s: %w", dst, err)
	}
	defer dstFile.Close()

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		return n, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := dstFile.Sync(); err != nil {
		return n, fmt.Errorf("sync %s: %w", dst, err)
	}
	return n, os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("readlink %s: %w", src, err)
	}
	return os.Symlink(target, dst)
}
