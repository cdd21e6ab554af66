// Package engine provides local copy engines used to move trees into the
// distributed filesystem and into private scratch directories.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// NewEngine creates an engine based on the specified type.
// Unknown and empty types fall back to CopyEngine.
func NewEngine(engineType model.EngineType) Engine {
	switch engineType {
	case model.EngineReflinkCopy:
		return NewReflinkEngine()
	default:
		return NewCopyEngine()
	}
}

// ParseEngineType validates a configured engine name.
func ParseEngineType(s string) (model.EngineType, error) {
	switch model.EngineType(s) {
	case "", model.EngineAuto:
		return model.EngineAuto, nil
	case model.EngineCopy, model.EngineReflinkCopy:
		return model.EngineType(s), nil
	default:
		return "", fmt.Errorf("unknown copy engine %q (want auto, copy or reflink-copy)", s)
	}
}

// DetectEngine picks reflink-copy when a probe clone succeeds inside dir and
// copy otherwise.
func DetectEngine(dir string) Engine {
	probeDir, err := os.MkdirTemp(dir, ".shimctl-reflink-probe-")
	if err != nil {
		return NewCopyEngine()
	}
	defer os.RemoveAll(probeDir)

	src := filepath.Join(probeDir, "src")
	if err := os.WriteFile(src, []byte("probe"), 0600); err != nil {
		return NewCopyEngine()
	}
	info, err := os.Stat(src)
	if err != nil {
		return NewCopyEngine()
	}
	if reflinkFile(src, filepath.Join(probeDir, "clone"), info) == nil {
		return NewReflinkEngine()
	}
	return NewCopyEngine()
}

// Resolve returns the engine for a configured type, probing dir for auto.
func Resolve(engineType model.EngineType, dir string) Engine {
	if engineType == model.EngineAuto || engineType == "" {
		return DetectEngine(dir)
	}
	return NewEngine(engineType)
}
