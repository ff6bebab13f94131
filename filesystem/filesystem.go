// Package filesystem holds the afero backend every file access in spacetime goes through.
//
// Tests switch it to an in-memory filesystem so nothing touches the disk.
package filesystem

import (
	"path/filepath"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// WriteFile writes data to path, creating its directory first.
func WriteFile(path string, data []byte) error {
	if err := backend.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return backend.WriteFile(path, data, 0o644)
}
