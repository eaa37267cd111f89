package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst verbatim, creating parent directories and
// keeping src's permission bits. An existing dst is replaced, even when it
// is read-only.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

// Concat joins the contents of matches, in order, separated by newlines,
// into a single file at dst.
func Concat(matches []Match, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	for i, m := range matches {
		if i > 0 {
			if _, err := io.WriteString(out, "\n"); err != nil {
				out.Close()
				return err
			}
		}
		content, err := os.ReadFile(m.Path)
		if err != nil {
			out.Close()
			return err
		}
		if _, err := out.Write(content); err != nil {
			out.Close()
			return err
		}
	}
	return out.Close()
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(path string, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, perm)
}
