// Package scaffold writes a starter project (templates, content and legal files) for sitebuilder init.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

//go:embed starter
var starter embed.FS

const root = "starter"

// Files returns the slash separated paths of the starter project.
func Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(starter, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p[len(root)+1:])
		}
		return nil
	})
	return files, err
}

// Check reports a validation error when any starter file already exists in dir.
func Check(dir string) error {
	files, err := Files()
	if err != nil {
		return sberrors.InternalError("read embedded starter project", err)
	}
	return check(dir, files)
}

func check(dir string, files []string) error {
	for _, rel := range files {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(target); err == nil {
			return sberrors.New(sberrors.CategoryValidation, sberrors.SeverityFatal,
				"file already exists (use --force to overwrite)").WithContext("path", target)
		}
	}
	return nil
}

// Write copies the starter project into dir. Existing files abort the write unless
// force is set; nothing is written in that case. It returns the written paths.
func Write(dir string, force bool) ([]string, error) {
	files, err := Files()
	if err != nil {
		return nil, sberrors.InternalError("read embedded starter project", err)
	}

	if !force {
		if err := check(dir, files); err != nil {
			return nil, err
		}
	}

	written := make([]string, 0, len(files))
	for _, rel := range files {
		data, err := starter.ReadFile(path.Join(root, rel))
		if err != nil {
			return written, sberrors.InternalError(fmt.Sprintf("read embedded %s", rel), err)
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return written, sberrors.FileSystemError("mkdir", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // project files are meant to be shared
			return written, sberrors.FileSystemError("write", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
