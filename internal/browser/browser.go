// Package browser opens the built site in the user's default web browser.
package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgbrowser "github.com/pkg/browser"
)

// IndexFile is the page opened by OpenIndex.
const IndexFile = "index.html"

// ErrNotBuilt is returned when the output has no index page.
var ErrNotBuilt = errors.New("the static site has not been built yet, run the build command first")

// Opener opens a local file; replaced in tests.
type Opener func(path string) error

// Default opens files with github.com/pkg/browser.
var Default Opener = pkgbrowser.OpenFile

// IndexPath returns the absolute path of the index page in outputDir, or ErrNotBuilt.
func IndexPath(outputDir string) (string, error) {
	path, err := filepath.Abs(filepath.Join(outputDir, IndexFile))
	if err != nil {
		return "", fmt.Errorf("resolve index path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotBuilt
	}
	return path, nil
}

// OpenIndex opens <outputDir>/index.html with open.
func OpenIndex(outputDir string, open Opener) error {
	path, err := IndexPath(outputDir)
	if err != nil {
		return err
	}
	if open == nil {
		open = Default
	}
	if err := open(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
