package engine

import (
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// CloneResult contains the result of a clone operation.
type CloneResult struct {
	Files        int      // regular files written
	Bytes        int64    // bytes written for regular files
	Degraded     bool     // true if any degradation occurred
	Degradations []string // list of degradation types
}

func (r *CloneResult) degrade(kind string) {
	r.Degraded = true
	for _, d := range r.Degradations {
		if d == kind {
			return
		}
	}
	r.Degradations = append(r.Degradations, kind)
}

// Engine copies a local file or directory tree to a new local location.
type Engine interface {
	// Name returns the engine type identifier.
	Name() model.EngineType

	// Clone copies src to dst. src may be a file or a directory; dst must
	// not exist and its parent is created as needed.
	Clone(src, dst string) (*CloneResult, error)
}
