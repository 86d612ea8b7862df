// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrManifestRead is the sentinel wrapped by ReadError.
var ErrManifestRead = errors.New("cannot read package manifest")

// ReadError reports a missing or unparseable package.json. It is not fatal:
// Read still returns a fallback manifest alongside it.
type ReadError struct {
	Path     string
	Fallback string
	Err      error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("no usable %s at %s, assuming package name is %q: %v", FileName, e.Path, e.Fallback, e.Err)
}

// Unwrap returns ErrManifestRead so callers can use errors.Is.
func (e *ReadError) Unwrap() []error {
	return []error{ErrManifestRead, e.Err}
}

// IsMissing reports whether the manifest file does not exist at all.
func (e *ReadError) IsMissing() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// Read loads dir/package.json. It always returns a usable manifest: when the
// file is missing or malformed the manifest is synthesized from the directory
// name and a *ReadError is returned as a warning.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err == nil {
		var m *Manifest
		if m, err = Parse(data); err == nil {
			m.Exists = true
			return m, nil
		}
	}

	fallback := filepath.Base(dir)
	return &Manifest{Name: fallback}, &ReadError{Path: path, Fallback: fallback, Err: err}
}
