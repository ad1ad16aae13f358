// Package fsutil holds the file copy helpers shared by the build and sync tools.
package fsutil

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Copy copies a file or directory tree from src to dst. Directories merge into
// existing destination directories. Modes and modification times are preserved and
// symlinks are followed. It returns the number of files copied.
func Copy(ctx context.Context, src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if err := copyFile(src, dst, info); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return copyDir(ctx, src, dst, info)
}

// CopyFile copies a single regular file with its mode and modification time.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return copyFile(src, dst, info)
}

func copyDir(ctx context.Context, src, dst string, info fs.FileInfo) (int, error) {
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		n, err := Copy(ctx, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name()))
		count += n
		if err != nil {
			return count, err
		}
	}
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return count, nil
}

func copyFile(src, dst string, info fs.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}
	if err := copyContent(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copyContent(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	// OpenFile applies perm only on create, and only through the umask.
	return out.Chmod(perm)
}
