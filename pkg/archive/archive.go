// Package archive reads model packs: ZIP archives bundling .obj files with
// their material libraries and textures.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrNotFound is returned by Read for paths the archive does not contain.
var ErrNotFound = errors.New("file not found in archive")

// Archive is an opened model pack. Lookups are case-insensitive and accept
// either slash direction. Read is safe for concurrent use.
type Archive struct {
	zr       *zip.ReadCloser
	fileList map[string]*Entry
}

// Entry describes a file stored in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
	Method           uint16

	file *zip.File
}

// Compressed reports whether the entry is stored deflated.
func (e *Entry) Compressed() bool {
	return e.Method != zip.Store
}

// Open opens a model pack for reading.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a := &Archive{
		zr:       zr,
		fileList: make(map[string]*Entry, len(zr.File)),
	}
	a.readFileTable()
	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.zr != nil {
		return a.zr.Close()
	}
	return nil
}

func (a *Archive) readFileTable() {
	for _, f := range a.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entry := &Entry{
			Name:             normalizePath(f.Name),
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			Method:           f.Method,
			file:             f,
		}
		a.fileList[entry.Name] = entry
	}
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[normalizePath(path)]
	return ok
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (*Entry, bool) {
	e, ok := a.fileList[normalizePath(path)]
	return e, ok
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	rc, err := entry.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", entry.Name, err)
	}
	defer rc.Close()

	result := make([]byte, entry.UncompressedSize)
	if _, err := io.ReadFull(rc, result); err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Name, err)
	}
	return result, nil
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	return strings.ToLower(path)
}
