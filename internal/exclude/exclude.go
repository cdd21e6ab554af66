// Package exclude prunes library files from a scratch copy of a plugin tree
// before it is staged.
package exclude

import (
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/internal/vfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// ParsePrefixes splits a comma-separated prefix list. Blank entries are
// dropped because an empty prefix would match every library.
func ParsePrefixes(list string) []string {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Selector matches library files whose name starts with one of prefixes,
// at any depth. Linked folders are not entered, so a scratch copy never
// reaches back into the tree it was made from.
func Selector(prefixes []string) vfs.Selector {
	return vfs.SelectorFuncs{
		Traverse: func(f vfs.FileInfo) bool { return !f.Link },
		Include: func(f vfs.FileInfo) bool {
			if f.Dir || f.Extension() != model.LibraryExtension {
				return false
			}
			name := f.Base()
			for _, p := range prefixes {
				if strings.HasPrefix(name, p) {
					return true
				}
			}
			return false
		},
	}
}

// RemoveExcluded deletes every library file under folder whose name starts
// with one of the comma-separated prefixes and returns how many were
// removed. It is destructive and must only be run on a copy.
func RemoveExcluded(folder, excludePrefixes string) (int, error) {
	prefixes := ParsePrefixes(excludePrefixes)
	if len(prefixes) == 0 {
		return 0, nil
	}
	return vfs.Delete(folder, Selector(prefixes))
}
