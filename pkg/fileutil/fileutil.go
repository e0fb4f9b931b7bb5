// Package fileutil provides sample-file access over local directories,
// embedded file systems and HTTP.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a file cannot be located in a FileSystem.
var ErrNotFound = errors.New("file not found")

// FindFileCaseInsensitive searches dir for filename ignoring case.
// Soundfont bundles are produced on case-insensitive systems, so names such
// as "Acoustic_Grand_Piano-OGG.js" must still resolve.
//
// Parameters:
//   - dir: The directory to search in
//   - filename: The filename to search for (case-insensitive)
//
// Returns:
//   - string: The actual path to the file if found
//   - error: ErrNotFound if no entry matches, or the directory read error
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	name, ok := matchEntry(entries, filename)
	if !ok {
		return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
	}
	return filepath.Join(dir, name), nil
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive for an fs.FS such as embed.FS.
// The returned path uses forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	name, ok := matchEntry(entries, filename)
	if !ok {
		return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
	}
	return path.Join(dir, name), nil
}

func matchEntry(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}

// cleanName は先頭の "/" や "\" を除去する
func cleanName(name string) string {
	return strings.TrimPrefix(strings.TrimPrefix(name, "/"), "\\")
}
