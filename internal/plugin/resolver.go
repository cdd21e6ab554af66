// Package plugin locates plugin folders by name across the configured
// plugin root directories.
package plugin

import (
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/internal/vfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/pathutil"
)

// RootSource supplies the ordered plugin root directories to search.
type RootSource interface {
	PluginRoots() ([]string, error)
}

// StaticRoots is a fixed list of plugin roots.
type StaticRoots []string

func (s StaticRoots) PluginRoots() ([]string, error) { return s, nil }

// Ref is a resolved plugin folder and its path relative to the root it was
// found under.
type Ref struct {
	Folder       string `json:"folder"`
	Root         string `json:"root"`
	RelativePath string `json:"relative_path"`
}

// Resolver finds plugin folders under a RootSource.
type Resolver struct {
	roots RootSource
}

// NewResolver creates a Resolver over roots.
func NewResolver(roots RootSource) *Resolver {
	return &Resolver{roots: roots}
}

// FindPluginFolder searches each existing plugin root in order for a folder
// whose path relative to that root equals name. The first match wins. A
// name that matches nothing yields found=false and a nil error.
func (r *Resolver) FindPluginFolder(name string) (Ref, bool, error) {
	name, err := pathutil.ValidatePluginName(name)
	if err != nil {
		return Ref{}, false, err
	}
	roots, err := r.roots.PluginRoots()
	if err != nil {
		return Ref{}, false, errclass.ErrResolution.WithMessage("list plugin roots").Wrap(err)
	}

	depth := strings.Count(name, "/") + 1
	sel := vfs.SelectorFuncs{
		Include: func(f vfs.FileInfo) bool {
			return f.Dir && f.Depth > 0 && f.Rel == name
		},
		Traverse: func(f vfs.FileInfo) bool {
			return f.Depth < depth && (f.Rel == "" || strings.HasPrefix(name, f.Rel+"/"))
		},
	}

	for _, root := range roots {
		ok, err := vfs.IsFolder(root)
		if err != nil {
			return Ref{}, false, errclass.ErrResolution.WithMessagef("error searching for folder %q", name).Wrap(err)
		}
		if !ok {
			continue
		}
		found, err := vfs.FindFiles(root, sel)
		if err != nil {
			return Ref{}, false, errclass.ErrResolution.WithMessagef("error searching for folder %q", name).Wrap(err)
		}
		if len(found) > 0 {
			return Ref{Folder: found[0].Path, Root: root, RelativePath: found[0].Rel}, true, nil
		}
	}
	return Ref{}, false, nil
}
