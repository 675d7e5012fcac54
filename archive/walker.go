// Package archive builds stylesheet discovery on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each stylesheet in the
// archive visited by Walk. The archive argument contains path to archive
// passed to Walk. The file argument is the zip.File structure for the entry.
// If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits every ".css" entry in the archive whose name starts with
// prefix (empty prefix matches all), calling walkFn for each. Entries with
// path traversal components ("..") or absolute paths abort the walk to
// prevent Zip Slip attacks.
func Walk(archive, prefix string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if !IsStylesheet(name) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// IsStylesheet reports whether name has a ".css" extension, ignoring case.
func IsStylesheet(name string) bool {
	return strings.EqualFold(path.Ext(name), ".css")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
