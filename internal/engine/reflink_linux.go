//go:build linux

package engine

import (
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// reflinkFile attempts the FICLONE ioctl to create a CoW copy.
func reflinkFile(src, dst string, info fs.FileInfo) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open src: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create dst: %w", err)
	}

	if err := unix.IoctlFileClone(int(dstFile.Fd()), int(srcFile.Fd())); err != nil {
		dstFile.Close()
		os.Remove(dst)
		return fmt.Errorf("ficlone: %w", err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close dst: %w", err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
