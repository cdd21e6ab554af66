//go:build !linux

package engine

import (
	"fmt"
	"io/fs"
)

// reflinkFile is unsupported on non-Linux platforms (FICLONE is a Linux ioctl).
func reflinkFile(_, _ string, _ fs.FileInfo) error {
	return fmt.Errorf("reflink not supported on this platform")
}
