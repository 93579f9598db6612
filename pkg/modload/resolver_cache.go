// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pelletier/go-toml/v2"
)

// defaultCacheSize bounds the in-memory resolved-location cache.
const defaultCacheSize = 256

type (
	// locationCache remembers (candidate, requesting dir) -> canonical
	// location so repeat requires skip probing. It lives for the
	// process unless a persist path is configured, in which case Save
	// writes it out as TOML for the next run.
	locationCache struct {
		mu   sync.Mutex
		lru  *lru.Cache[string, string]
		path string
	}

	// cacheFile is the persisted shape of the cache.
	cacheFile struct {
		Entries map[string]string `toml:"entries"`
	}
)

// newLocationCache builds the cache, warm-loading persisted entries
// when a path is configured and the file exists.
func newLocationCache(size int, persistPath string) (*locationCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	inner, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	c := &locationCache{lru: inner, path: persistPath}

	if persistPath != "" {
		if err := c.load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *locationCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(key)
}

func (c *locationCache) put(key, location string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, location)
}

func (c *locationCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *locationCache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache file %s: %w", c.path, err)
	}

	var file cacheFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing cache file %s: %w", c.path, err)
	}
	for key, loc := range file.Entries {
		c.lru.Add(key, loc)
	}
	return nil
}

// Save writes the current entries to the persist path. A cache without
// one is memory-only and Save is a no-op.
func (c *locationCache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	file := cacheFile{Entries: make(map[string]string, c.lru.Len())}
	for _, key := range c.lru.Keys() {
		if loc, ok := c.lru.Peek(key); ok {
			file.Entries[key] = loc
		}
	}
	c.mu.Unlock()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", c.path, err)
	}
	return nil
}

// PersistCache writes the resolved-location cache to its configured
// persist path, if any.
func (r *Resolver) PersistCache() error {
	return r.cache.Save()
}
