// Package geocode resolves coordinates to place names through a persisted
// cache and the Nominatim reverse geocoding API.
package geocode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benjoevidal/photosort/internal/geo"

	"github.com/rs/zerolog/log"
)

// cachePrecision quantizes cache keys to 3 decimal places (~100 m), so
// repeated lookups near the same spot hit the cache.
const cachePrecision = "%.3f,%.3f"

// Failed is the sentinel value stored for coordinates whose lookup was
// rejected, so they are not retried on every run.
const Failed = ""

// CacheKey returns the stable quantized key for a coordinate.
func CacheKey(p geo.Point) string {
	return fmt.Sprintf(cachePrecision, p.Lat, p.Lon)
}

// Cache is a coordinate-keyed place name mapping persisted as a JSON file.
// A missing or corrupt file starts the cache empty rather than failing the
// run. Not safe for concurrent processes; the last writer wins.
type Cache struct {
	path    string
	entries map[string]string
}

// OpenCache loads the cache at path, or an empty one when the file is
// missing or unreadable.
func OpenCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Cannot read geocode cache, starting empty")
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Geocode cache is corrupt, starting empty")
		c.entries = make(map[string]string)
	}
	return c
}

// Get returns the cached value for key. A hit with the Failed sentinel means
// a previous lookup was rejected.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value in memory; call Flush to persist it.
func (c *Cache) Put(key, value string) {
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Flush writes the cache to disk, creating parent directories as needed.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}
