// Package hadoop models the small slice of the cluster client API that
// staging needs: URI-style paths, the key/value job configuration and the
// distributed cache registration helpers that operate on it.
package hadoop

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Separator is the path separator used on the distributed filesystem.
const Separator = "/"

// Path is a filesystem path that may carry a scheme and authority, as in
// hdfs://namenode:8020/opt/pentaho/mapreduce.
type Path struct {
	scheme    string
	authority string
	path      string
}

// ParsePath parses s into a Path. A bare path without scheme is accepted.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("empty path")
	}
	if !strings.Contains(s, "://") {
		return Path{path: cleanPath(s)}, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return Path{}, fmt.Errorf("parse path %q: %w", s, err)
	}
	p := u.Path
	if p == "" {
		p = Separator
	}
	return Path{scheme: u.Scheme, authority: u.Host, path: cleanPath(p)}, nil
}

// MustPath is ParsePath for literals; it panics on error.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// Join resolves child against p. Each slash-separated element of child is
// appended, so Join("drivers/a/b.jar") yields three levels.
func (p Path) Join(child string) Path {
	child = strings.TrimPrefix(strings.ReplaceAll(child, "\\", "/"), "/")
	if child == "" {
		return p
	}
	return Path{scheme: p.scheme, authority: p.authority, path: path.Join(p.path, child)}
}

// Name returns the final element of the path.
func (p Path) Name() string {
	if p.path == "" || p.path == Separator {
		return ""
	}
	return path.Base(p.path)
}

// Parent returns the containing path. The root is its own parent.
func (p Path) Parent() Path {
	return Path{scheme: p.scheme, authority: p.authority, path: path.Dir(p.path)}
}

// Scheme returns the URI scheme, or "" for an unqualified path.
func (p Path) Scheme() string { return p.scheme }

// Authority returns the URI authority (host[:port]).
func (p Path) Authority() string { return p.authority }

// PathString returns only the path component.
func (p Path) PathString() string { return p.path }

// IsZero reports whether p was never set.
func (p Path) IsZero() bool { return p.path == "" && p.scheme == "" }

// IsAbsolute reports whether the path component starts at the root.
func (p Path) IsAbsolute() bool { return strings.HasPrefix(p.path, Separator) }

// IsQualified reports whether p carries a scheme.
func (p Path) IsQualified() bool { return p.scheme != "" }

// Disqualify strips scheme and authority, leaving the filesystem path.
func (p Path) Disqualify() Path {
	return Path{path: p.path}
}

// Qualify sets scheme and authority from base when p has none.
func (p Path) Qualify(scheme, authority string) Path {
	if p.scheme != "" {
		return p
	}
	return Path{scheme: scheme, authority: authority, path: p.path}
}

// URI returns the path as a URL.
func (p Path) URI() *url.URL {
	if p.scheme == "" {
		return &url.URL{Path: p.path}
	}
	return &url.URL{Scheme: p.scheme, Host: p.authority, Path: p.path}
}

func (p Path) String() string {
	if p.scheme == "" {
		return p.path
	}
	return p.scheme + "://" + p.authority + p.path
}

// HasPrefix reports whether p equals prefix or lies below it, comparing path
// components only.
func (p Path) HasPrefix(prefix Path) bool {
	if p.path == prefix.path {
		return true
	}
	base := strings.TrimSuffix(prefix.path, Separator)
	return strings.HasPrefix(p.path, base+Separator)
}
