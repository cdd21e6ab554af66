package vfs

import (
	"path/filepath"
	"strings"
)

// FileInfo describes one entry visited during a selective traversal.
type FileInfo struct {
	Path  string // absolute or caller-relative local path
	Rel   string // slash-separated path relative to the traversal base; "" for the base itself
	Depth int    // 0 for the base folder
	Dir   bool
	Link  bool // the entry itself is a symbolic link
}

// Base returns the final element of the path.
func (f FileInfo) Base() string {
	return filepath.Base(f.Path)
}

// Extension returns the text after the last dot of the base name, without
// the dot. Names without a dot have no extension.
func (f FileInfo) Extension() string {
	return Extension(f.Base())
}

// Extension returns the extension of name without the leading dot.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

// Selector decides which entries a traversal reports and which folders it
// descends into.
type Selector interface {
	IncludeFile(FileInfo) bool
	TraverseDescendants(FileInfo) bool
}

// SelectorFuncs adapts two functions to a Selector. A nil Include selects
// nothing; a nil Traverse descends into every folder.
type SelectorFuncs struct {
	Include  func(FileInfo) bool
	Traverse func(FileInfo) bool
}

func (s SelectorFuncs) IncludeFile(f FileInfo) bool {
	return s.Include != nil && s.Include(f)
}

func (s SelectorFuncs) TraverseDescendants(f FileInfo) bool {
	if s.Traverse == nil {
		return f.Dir
	}
	return f.Dir && s.Traverse(f)
}

// All selects every entry including the base folder.
func All() Selector {
	return SelectorFuncs{Include: func(FileInfo) bool { return true }}
}

// Depth selects entries whose depth lies within [min, max].
func Depth(min, max int) Selector {
	return SelectorFuncs{
		Include:  func(f FileInfo) bool { return f.Depth >= min && f.Depth <= max },
		Traverse: func(f FileInfo) bool { return f.Depth < max },
	}
}

// FilesWithExtension selects regular files with the given extension below
// the base. An empty extension selects every regular file.
func FilesWithExtension(ext string) Selector {
	return SelectorFuncs{
		Include: func(f FileInfo) bool {
			return !f.Dir && (ext == "" || f.Extension() == ext)
		},
	}
}
