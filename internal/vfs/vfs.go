// Package vfs is the local-file capability used by extraction, exclusion
// filtering and plugin discovery: existence checks, child listing and
// selector-driven search and deletion over a local directory tree.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsFolder reports whether path exists and is a directory.
func IsFolder(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// CreateFolder creates path and any missing parents.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0755)
}

// Open returns a reader for the content of a regular file.
func Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Child returns dir/name when it exists, and "" otherwise.
func Child(dir, name string) (string, error) {
	p := filepath.Join(dir, name)
	ok, err := Exists(p)
	if err != nil || !ok {
		return "", err
	}
	return p, nil
}

// Children lists the direct entries of dir in name order.
func Children(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, FileInfo{
			Path:  filepath.Join(dir, e.Name()),
			Rel:   e.Name(),
			Depth: 1,
			Dir:   isDir(filepath.Join(dir, e.Name()), e),
			Link:  e.Type()&fs.ModeSymlink != 0,
		})
	}
	return out, nil
}

// isDir follows symlinks so that linked plugin folders are searchable.
func isDir(path string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FindFiles walks base depth-first in name order and returns every entry the
// selector includes. The base folder itself is offered at depth 0.
func FindFiles(base string, sel Selector) ([]FileInfo, error) {
	info, err := os.Stat(base)
	if err != nil {
		return nil, fmt.Errorf("find files in %s: %w", base, err)
	}
	var found []FileInfo
	root := FileInfo{Path: base, Depth: 0, Dir: info.IsDir()}
	if err := traverse(root, sel, &found); err != nil {
		return nil, err
	}
	return found, nil
}

func traverse(f FileInfo, sel Selector, found *[]FileInfo) error {
	if sel.IncludeFile(f) {
		*found = append(*found, f)
	}
	if !f.Dir || !sel.TraverseDescendants(f) {
		return nil
	}
	children, err := Children(f.Path)
	if err != nil {
		return err
	}
	for _, c := range children {
		c.Depth = f.Depth + 1
		if f.Rel != "" {
			c.Rel = f.Rel + "/" + c.Rel
		}
		if err := traverse(c, sel, found); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every entry under base that the selector includes and
// returns the number of entries removed. Deeper entries are removed first.
func Delete(base string, sel Selector) (int, error) {
	found, err := FindFiles(base, sel)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].Depth > found[j].Depth })
	removed := 0
	for _, f := range found {
		if err := os.RemoveAll(f.Path); err != nil {
			return removed, fmt.Errorf("delete %s: %w", f.Path, err)
		}
		removed++
	}
	return removed, nil
}

// DeleteDirectory removes dir and everything below it and reports whether
// it is gone afterwards.
func DeleteDirectory(dir string) (bool, error) {
	if err := os.RemoveAll(dir); err != nil {
		return false, err
	}
	ok, err := Exists(dir)
	return !ok, err
}

// FindLocalFiles returns the paths of all regular files below root with
// the given extension, or all regular files when extension is empty.
func FindLocalFiles(root, extension string) ([]string, error) {
	found, err := FindFiles(root, FilesWithExtension(extension))
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(found))
	for _, f := range found {
		paths = append(paths, f.Path)
	}
	return paths, nil
}
