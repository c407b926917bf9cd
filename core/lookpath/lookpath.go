// Package lookpath resolves program names against the search path.
package lookpath

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// Cache remembers where programs were found on the search path. Only
// successful lookups in absolute directories are remembered. It is safe for concurrent use.
type Cache struct {
	// Getenv reads the search path, os.Getenv if nil.
	Getenv func(string) string

	mu    sync.RWMutex
	paths map[string]string
}

// NewCache creates an empty cache that reads the process environment.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) getenv(key string) string {
	if c.Getenv != nil {
		return c.Getenv(key)
	}
	return os.Getenv(key)
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted. The result may be an absolute path or a path
// relative to the current directory.
func (c *Cache) LookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		err := findExecutable(file)
		if err == nil {
			return file, nil
		}
		return "", err
	}

	c.mu.RLock()
	cached, ok := c.paths[file]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := c.getenv("PATH")
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			if !filepath.IsAbs(path) {
				// Relative entries depend on the working directory, which
				// cd changes, so they are resolved on every call.
				if !strings.Contains(path, string(filepath.Separator)) {
					path = "." + string(filepath.Separator) + path
				}
				return path, nil
			}

			c.mu.Lock()
			if c.paths == nil {
				c.paths = make(map[string]string)
			}
			c.paths[file] = path
			c.mu.Unlock()
			return path, nil
		}
	}
	return "", ErrNotFound
}

// Reset forgets every remembered location, e.g. after PATH changes.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = nil
}

// Len returns the number of remembered programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.paths)
}
