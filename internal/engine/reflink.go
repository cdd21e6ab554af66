package engine

import (
	"fmt"
	"io/fs"

	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// ReflinkEngine clones files with copy-on-write reflinks where the
// filesystem supports it and falls back to a byte copy per file otherwise.
type ReflinkEngine struct{}

// NewReflinkEngine creates a new ReflinkEngine.
func NewReflinkEngine() *ReflinkEngine {
	return &ReflinkEngine{}
}

// Name returns the engine type.
func (e *ReflinkEngine) Name() model.EngineType {
	return model.EngineReflinkCopy
}

// Clone reflinks src to dst. Files that cannot be reflinked are copied and
// the result is marked degraded.
func (e *ReflinkEngine) Clone(src, dst string) (*CloneResult, error) {
	result := &CloneResult{}
	err := walkClone(src, dst, func(path, target string, info fs.FileInfo) error {
		if err := reflinkFile(path, target, info); err == nil {
			result.Files++
			result.Bytes += info.Size()
			return nil
		}
		result.degrade("reflink")
		n, err := copyFile(path, target, info)
		if err != nil {
			return err
		}
		result.Files++
		result.Bytes += n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reflink clone: %w", err)
	}
	return result, nil
}
