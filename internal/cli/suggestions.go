package cli

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/color"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
)

// suggestPlugins lists folders next to where name was expected whose names
// share a prefix with its final element.
func suggestPlugins(name string, roots []string) []string {
	name = strings.Trim(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "/")
	parent, base := path.Split(name)
	prefix := base
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	seen := map[string]bool{}
	var out []string
	for _, root := range roots {
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(parent)))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || !strings.HasPrefix(strings.ToLower(e.Name()), strings.ToLower(prefix)) {
				continue
			}
			candidate := parent + e.Name()
			if !seen[candidate] {
				seen[candidate] = true
				out = append(out, candidate)
			}
		}
	}
	sort.Strings(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

const notFoundPrefix = "plugin directory not found: "

// withPluginHint adds close plugin folder matches to a not-found error.
func withPluginHint(err error, roots []string) error {
	var se *errclass.ShimError
	if !errors.As(err, &se) || !errors.Is(se, errclass.ErrPluginNotFound) {
		return err
	}
	missing := strings.TrimPrefix(se.Message, notFoundPrefix)
	matches := suggestPlugins(missing, roots)
	if len(matches) == 0 {
		return err
	}
	styled := make([]string, len(matches))
	for i, m := range matches {
		styled[i] = color.Code(m)
	}
	hint := "Did you mean"
	if len(matches) > 1 {
		hint += " one of"
	}
	return fmt.Errorf("%w\n%s: %s?", err, hint, strings.Join(styled, ", "))
}
