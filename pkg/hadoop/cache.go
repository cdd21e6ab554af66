package hadoop

import (
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// CreateSymlink turns on symlink creation for cached files in the task
// working directory.
func CreateSymlink(conf *Configuration) {
	conf.Set(model.KeyCreateSymlink, "yes")
}

// SymlinkEnabled reports whether CreateSymlink has been applied.
func SymlinkEnabled(conf *Configuration) bool {
	return conf.GetBool(model.KeyCreateSymlink, false)
}

// AddCacheFile appends uri to the list of files shipped to every task.
func AddCacheFile(uri string, conf *Configuration) {
	files := conf.Get(model.KeyCacheFiles)
	if files == "" {
		conf.Set(model.KeyCacheFiles, uri)
		return
	}
	conf.Set(model.KeyCacheFiles, files+","+uri)
}

// CacheFiles returns the registered cache file URIs in registration order.
func CacheFiles(conf *Configuration) []string {
	return splitNonEmpty(conf.Get(model.KeyCacheFiles), ",")
}

// ClasspathFiles returns the classpath entries, split on sep.
func ClasspathFiles(conf *Configuration, sep string) []string {
	return splitNonEmpty(conf.Get(model.KeyClasspathFiles), sep)
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
