// Package assets loads model, material and texture files from root
// directories and model pack archives.
package assets

import (
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/Faultbox/objkit/internal/texture"
	"github.com/Faultbox/objkit/pkg/archive"
	"github.com/Faultbox/objkit/pkg/encoding"
)

var (
	// ErrNotFound is returned when no root contains the requested file.
	ErrNotFound = errors.New("asset not found")
	// ErrOutsideRoot is returned for a relative path that climbs above the roots.
	ErrOutsideRoot = errors.New("path escapes asset roots")
)

// TextLoader supplies the contents of text assets (.obj, .mtl) by path.
type TextLoader interface {
	LoadText(path string) (string, error)
}

// ImageResolver supplies decoded texture images by path.
type ImageResolver interface {
	ResolveImage(path string) (image.Image, error)
}

// Manager resolves asset paths against a list of root directories and then
// a list of archives. Loose files in a root override archive contents.
type Manager struct {
	roots    []string
	archives []*archive.Archive
	encoding string
	cache    *Cache
	mu       sync.RWMutex
}

// NewManager creates a manager that decodes text with the named encoding
// (empty for UTF-8).
func NewManager(textEncoding string) (*Manager, error) {
	if _, err := encoding.Lookup(textEncoding); err != nil {
		return nil, err
	}
	return &Manager{
		encoding: textEncoding,
		cache:    NewCache(),
	}, nil
}

// AddRoot adds a directory to search.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "adding root %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("adding root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	return nil
}

// AddArchive opens a model pack and adds it to the search list.
// Archives are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(path string) error {
	a, err := archive.Open(path)
	if err != nil {
		return errors.Wrapf(err, "adding archive %s", path)
	}

	m.mu.Lock()
	m.archives = append(m.archives, a)
	m.mu.Unlock()

	return nil
}

// Roots returns the configured root directories in search priority order.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.roots))
	for i := len(m.roots) - 1; i >= 0; i-- {
		out = append(out, m.roots[i])
	}
	return out
}

// Load reads a file. Absolute paths are read directly; relative paths are
// looked up in each root and must not climb above it.
func (m *Manager) Load(path string) ([]byte, error) {
	path = filepath.FromSlash(encoding.NormalizePath(path))

	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	if filepath.IsAbs(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, m.wrapReadError(err, path)
		}
		m.cache.Set(path, data)
		return data, nil
	}
	if !filepath.IsLocal(path) {
		return nil, errors.Wrap(ErrOutsideRoot, filepath.ToSlash(path))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.roots[i], path))
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, m.wrapReadError(err, path)
		}
	}

	for i := len(m.archives) - 1; i >= 0; i-- {
		data, err := m.archives[i].Read(path)
		if err == nil {
			m.cache.Set(path, data)
			return data, nil
		}
		if !errors.Is(err, archive.ErrNotFound) {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
	}

	return nil, errors.Wrap(ErrNotFound, path)
}

func (m *Manager) wrapReadError(err error, path string) error {
	if os.IsNotExist(err) {
		return errors.Wrap(ErrNotFound, path)
	}
	return errors.Wrapf(err, "reading %s", path)
}

// LoadText reads a file and decodes it to UTF-8.
func (m *Manager) LoadText(path string) (string, error) {
	data, err := m.Load(path)
	if err != nil {
		return "", err
	}
	text, err := encoding.DecodeText(data, m.encoding)
	if err != nil {
		return "", errors.Wrap(err, path)
	}
	return text, nil
}

// ResolveImage reads and decodes a texture image.
func (m *Manager) ResolveImage(path string) (image.Image, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	return texture.Decode(data, path)
}

// Close drops cached file contents and closes every archive.
func (m *Manager) Close() {
	m.cache.Clear()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.archives {
		a.Close()
	}
	m.archives = nil
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
