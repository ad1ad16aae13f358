// Package manifest rewrites the site's web app manifest with the configured site names.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

// WebManifest is the decoded manifest object. Unknown keys are kept as raw JSON.
type WebManifest map[string]json.RawMessage

// Read loads a manifest file.
func Read(path string) (WebManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m WebManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, sberrors.Wrap(err, sberrors.CategoryValidation, sberrors.SeverityFatal, "invalid web manifest").
			WithContext("path", path)
	}
	if m == nil {
		return nil, sberrors.New(sberrors.CategoryValidation, sberrors.SeverityFatal, "web manifest is not a JSON object").
			WithContext("path", path)
	}
	return m, nil
}

// SetString stores a string value under key. &, < and > are kept literal.
func (m WebManifest) SetString(key, value string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	m[key] = bytes.TrimRight(buf.Bytes(), "\n")
	return nil
}

// String returns the string stored under key, or "".
func (m WebManifest) String(key string) string {
	var s string
	if raw, ok := m[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// Encode renders the manifest with two space indentation and a trailing newline.
func (m WebManifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Update sets name and short_name in the manifest at path.
// It reports false without error when no manifest exists.
func Update(path, name, shortName string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, sberrors.FileSystemError("stat", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	m, err := Read(path)
	if err != nil {
		if _, ok := sberrors.As(err); ok {
			return false, err
		}
		return false, sberrors.FileSystemError("read", path, err)
	}
	if err := m.SetString("name", name); err != nil {
		return false, fmt.Errorf("set name: %w", err)
	}
	if err := m.SetString("short_name", shortName); err != nil {
		return false, fmt.Errorf("set short_name: %w", err)
	}

	data, err := m.Encode()
	if err != nil {
		return false, fmt.Errorf("encode manifest: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return false, sberrors.FileSystemError("write", path, err)
	}
	return true, nil
}
