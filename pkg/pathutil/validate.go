// Package pathutil validates the user supplied names that are joined into
// local and distributed filesystem paths.
package pathutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
)

var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidateSegment checks a name used as a single path element, such as a
// shim identifier.
func ValidateSegment(name string) error {
	if name == "" {
		return errclass.ErrInvalidArgument.WithMessage("name must not be empty")
	}
	name = norm.NFC.String(name)
	if name == "." || name == ".." {
		return errclass.ErrInvalidArgument.WithMessagef("name must not be %q", name)
	}
	if strings.ContainsAny(name, "/\\") {
		return errclass.ErrInvalidArgument.WithMessagef("name must not contain separators: %s", name)
	}
	if err := checkControl(name); err != nil {
		return err
	}
	if !segmentRegex.MatchString(name) {
		return errclass.ErrInvalidArgument.WithMessagef("name must match [a-zA-Z0-9._-]+: %s", name)
	}
	return nil
}

// ValidatePluginName checks a plugin folder name relative to a plugin root
// and returns it NFC normalized with forward slashes. Nested names such as
// "steps/my-step" are allowed; absolute names and ".." elements are not.
func ValidatePluginName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errclass.ErrInvalidArgument.WithMessage("plugin name must not be empty")
	}
	name = strings.ReplaceAll(norm.NFC.String(name), "\\", "/")
	if strings.HasPrefix(name, "/") {
		return "", errclass.ErrInvalidArgument.WithMessagef("plugin name must be relative: %s", name)
	}
	if err := checkControl(name); err != nil {
		return "", err
	}
	name = strings.TrimSuffix(name, "/")
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", errclass.ErrInvalidArgument.WithMessagef("plugin name has an invalid element %q: %s", seg, name)
		}
	}
	return name, nil
}

func checkControl(name string) error {
	for _, r := range name {
		if unicode.IsControl(r) {
			return errclass.ErrInvalidArgument.WithMessagef("name must not contain control characters: %q", name)
		}
	}
	return nil
}
