package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// entry is the on-disk form of one cached lookup: ["lat", "lon"] for a
// resolved address, [null, null] for an address the geocoder has no results
// for. Latitude and longitude stay strings because that is what the geocoder
// returns and what previous deployments wrote.
type entry [2]*string

// Cache is a disk-backed map of normalized address -> geocoding result.
// Entries never expire; a cached no-result is permanent so bad input never
// hits the geocoder twice.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]entry
}

// OpenCache loads the cache file at path, starting empty if it does not exist.
func OpenCache(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read geo cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parse geo cache %s: %w", path, err)
	}
	return c, nil
}

// Lookup returns the cached coordinate for a normalized address key.
// The second return reports a cache hit; a hit with err == ErrNotFound is a
// cached no-result.
func (c *Cache) Lookup(key string) (Coordinate, bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return Coordinate{}, false, nil
	}
	if e[0] == nil || e[1] == nil {
		return Coordinate{}, true, ErrNotFound
	}

	coord, err := e.coordinate()
	if err != nil {
		return Coordinate{}, true, err
	}
	return coord, true, nil
}

// StoreCoordinate records a successful lookup and flushes the cache to disk.
func (c *Cache) StoreCoordinate(key, lat, lon string) error {
	return c.store(key, entry{&lat, &lon})
}

// StoreNotFound records a confirmed empty geocoder result and flushes the
// cache to disk.
func (c *Cache) StoreNotFound(key string) error {
	return c.store(key, entry{nil, nil})
}

func (c *Cache) store(key string, e entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = e
	return c.flushLocked()
}

// flushLocked writes the whole cache to a temp file and renames it into
// place, so a concurrent reader never sees a partial file.
func (c *Cache) flushLocked() error {
	data, err := json.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("encode geo cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".geocache-*")
	if err != nil {
		return fmt.Errorf("write geo cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write geo cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write geo cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write geo cache: %w", err)
	}
	return nil
}

// Len reports the number of cached entries, resolved or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (e entry) coordinate() (Coordinate, error) {
	lat, err := strconv.ParseFloat(*e[0], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid cached latitude %q: %w", *e[0], err)
	}
	lon, err := strconv.ParseFloat(*e[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid cached longitude %q: %w", *e[1], err)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}
