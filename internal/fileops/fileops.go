// Package fileops copies or moves photos into bucket folders without
// overwriting existing files.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// uniquePath returns a path under destDir for name that does not collide
// with an existing file, appending " (1)", " (2)", ... before the extension.
func uniquePath(destDir, name string) string {
	candidate := filepath.Join(destDir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(destDir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// Copy copies src into destDir, creating it as needed, and preserves the
// source modification time. Returns the destination path.
func Copy(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	dest := uniquePath(destDir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if info, err := os.Stat(src); err == nil {
		_ = os.Chtimes(dest, info.ModTime(), info.ModTime())
	}
	return dest, nil
}

// Move moves src into destDir. Rename is attempted first and falls back to
// copy-then-remove across filesystems. Returns the destination path.
func Move(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	dest := uniquePath(destDir, filepath.Base(src))

	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}

	dest, err := Copy(src, destDir)
	if err != nil {
		return "", err
	}
	return dest, os.Remove(src)
}
