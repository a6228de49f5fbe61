// Package cache provides a simple TTL file-backed cache for backend
// lookups that rarely change, such as instance descriptors.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const appDir = "sqldash"

// Cache is a directory of JSON entries expired by file modification time.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// NewDefault returns a cache rooted at the OS user cache dir.
func NewDefault() *Cache {
	return &Cache{dir: defaultDir()}
}

// Get returns true if a valid cache entry was found and decoded into dest.
// Expired entries are removed on read. A corrupt entry is treated as a
// miss, not an error.
func (c *Cache) Get(key string, ttl time.Duration, dest any) (bool, error) {
	if c == nil || c.dir == "" || ttl <= 0 {
		return false, nil
	}

	path := c.pathForKey(key)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	if time.Now().After(info.ModTime().Add(ttl)) {
		_ = os.Remove(path)
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, nil
	}

	return true, nil
}

// Set stores data in the cache under key. Writes go through a temp
// file and rename so readers never observe a partial entry.
func (c *Cache) Set(key string, data any) error {
	if c == nil || c.dir == "" {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, c.pathForKey(key))
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(key string) error {
	if c == nil || c.dir == "" {
		return nil
	}

	err := os.Remove(c.pathForKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes all cached entries in the cache directory.
func (c *Cache) Clear() error {
	if c == nil || c.dir == "" {
		return nil
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

func (c *Cache) pathForKey(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

func defaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, appDir)
}

// sanitizeKey maps an arbitrary cache key to a safe file name.
func sanitizeKey(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
