package util

import (
	"os"
	"path/filepath"
)

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	return false, err
}

// ListSubdirectories returns the names of the directories directly under dir.
// A missing dir yields an empty list.
func ListSubdirectories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// RemoveChild deletes dir/name recursively, refusing names that would
// escape dir.
func RemoveChild(dir, name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return os.ErrInvalid
	}
	return os.RemoveAll(filepath.Join(dir, name))
}
