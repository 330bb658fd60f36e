// Package fileutil holds the small filesystem helpers shared by the wallet
// and the CLI: atomic replacement of metadata files and JSON round trips.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyPath indicates an empty file path was provided.
var ErrEmptyPath = errors.New("path is empty")

// DirPerm is used for every directory the SDK creates.
const DirPerm = 0o700

// WriteAtomic replaces path with data. Readers see either the old or the
// new content, never a partial write.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil { //nolint:gosec // G703: path comes from the SDK data layout
		_ = os.Remove(tmpPath)
		committed = true
		return fmt.Errorf("renaming temp file: %w", err)
	}
	committed = true

	// Best effort: make the rename durable.
	if d, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from path
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// WriteJSONAtomic marshals v with indentation and writes it atomically,
// creating parent directories as needed.
func WriteJSONAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return WriteAtomic(path, data, perm)
}

// ReadJSON decodes the file at path into v. Unknown fields are rejected.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the SDK data layout
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than "not exist" count
// as existing so callers never overwrite something they cannot inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
