package fileutil

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var renameFunc = os.Rename

// MoveFile renames src to dst. When the two paths sit on different
// filesystems the file is copied with verification and src removed.
func MoveFile(src, dst string) error {
	err := renameFunc(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device move %s -> %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after cross-device copy: %w", src, err)
	}
	return nil
}

func isCrossDevice(err error) bool {
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	var le *os.LinkError
	return errors.As(err, &le) && errors.Is(le.Err, syscall.EXDEV)
}

// Exists reports whether path exists, without following the error details.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsRegularFile reports whether path is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
