// Package classpath registers staged files with a job configuration so
// that tasks receive them through the distributed cache and, for
// libraries, on their classpath.
package classpath

import (
	"fmt"
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// Matcher filters paths by their fully qualified string form.
type Matcher func(path string) bool

// NotLibFiles matches paths that do not contain "/lib".
func NotLibFiles(path string) bool {
	return !strings.Contains(path, "/"+model.LibDir)
}

// Registrar adds files to job configurations. The separator joins
// classpath entries and must match the cluster's path separator.
type Registrar struct {
	fs        dfs.FileSystem
	separator string
}

// NewRegistrar creates a Registrar over fs. An empty separator means ",".
func NewRegistrar(fs dfs.FileSystem, separator string) *Registrar {
	if separator == "" {
		separator = model.DefaultPathSeparator
	}
	return &Registrar{fs: fs, separator: separator}
}

// Separator returns the cluster path separator in use.
func (r *Registrar) Separator() string { return r.separator }

// DisqualifyPath strips scheme and authority from p.
func DisqualifyPath(p hadoop.Path) hadoop.Path {
	return p.Disqualify()
}

// AddFileToClasspath appends the disqualified file to the job classpath
// and registers its fully qualified URI as a cached file.
func (r *Registrar) AddFileToClasspath(file hadoop.Path, conf *hadoop.Configuration) {
	file = DisqualifyPath(file)
	if cp, ok := conf.Lookup(model.KeyClasspathFiles); ok && cp != "" {
		conf.Set(model.KeyClasspathFiles, cp+r.separator+file.String())
	} else {
		conf.Set(model.KeyClasspathFiles, file.String())
	}
	hadoop.AddCacheFile(r.fs.MakeQualified(file).String(), conf)
}

// AddCachedFilesToClasspath enables cache symlinks and puts every file on
// the classpath.
func (r *Registrar) AddCachedFilesToClasspath(files []hadoop.Path, conf *hadoop.Configuration) {
	hadoop.CreateSymlink(conf)
	for _, f := range files {
		r.AddFileToClasspath(f, conf)
	}
}

// AddCachedFiles enables cache symlinks and registers every path as a
// cached file linked under its own name, without touching the classpath.
func (r *Registrar) AddCachedFiles(paths []hadoop.Path, conf *hadoop.Configuration) {
	hadoop.CreateSymlink(conf)
	for _, p := range paths {
		hadoop.AddCacheFile(p.String()+"#"+p.Name(), conf)
	}
}

// FindFiles lists the direct children of path whose qualified form
// satisfies match. A nil match accepts everything.
func FindFiles(fs dfs.FileSystem, path hadoop.Path, match Matcher) ([]hadoop.Path, error) {
	statuses, err := fs.ListStatus(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	found := make([]hadoop.Path, 0, len(statuses))
	for _, st := range statuses {
		if match == nil || match(st.Path.String()) {
			found = append(found, st.Path)
		}
	}
	return found, nil
}

// ConfigureWithKettleEnvironment registers the environment installed at
// installDir with conf: every entry of lib/ goes on the classpath, every
// other top-level entry is shipped as a cached file.
func (r *Registrar) ConfigureWithKettleEnvironment(conf *hadoop.Configuration, installDir hadoop.Path) error {
	libs, err := FindFiles(r.fs, installDir.Join(model.LibDir), nil)
	if err != nil {
		return err
	}
	r.AddCachedFilesToClasspath(libs, conf)

	others, err := FindFiles(r.fs, installDir, NotLibFiles)
	if err != nil {
		return err
	}
	r.AddCachedFiles(others, conf)
	return nil
}
