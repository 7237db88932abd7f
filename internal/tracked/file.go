// Package tracked holds the set of files registered for versioning.
package tracked

import (
	"os"
	"path/filepath"

	"minigit/internal/errors"
)

// File is a validated reference to a trackable file.
// Two Files are equal when both Name and Path match.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewFile validates that path is an existing regular file. The contents are not read.
func NewFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, errors.InvalidPath(path, "no such file")
		}
		return File{}, errors.InvalidPath(path, err.Error())
	}
	if !info.Mode().IsRegular() {
		return File{}, errors.InvalidPath(path, "not a regular file")
	}

	return File{
		Name: filepath.Base(path),
		Path: path,
	}, nil
}
