package utils

import (
	"os"
	"path/filepath"
)

// EnsureDataDir creates the local dataset directory if it doesn't exist.
func EnsureDataDir(dir string) error {
	if dir == "" {
		dir = "data"
	}
	return os.MkdirAll(dir, os.ModePerm)
}

// DataPath returns the path of a file inside the dataset directory.
func DataPath(dir, filename string) string {
	if dir == "" {
		dir = "data"
	}
	return filepath.Join(dir, filename)
}
