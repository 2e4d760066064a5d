package utils

import (
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds caches built without an explicit size
const DefaultCacheSize = 1024

// fileStamp identifies one version of a file on disk
type fileStamp struct {
	modTime time.Time
	size    int64
}

func stampOf(path string) (fileStamp, bool) {
	stat, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: stat.ModTime(), size: stat.Size()}, true
}

type cacheEntry[V any] struct {
	value V
	path  string
	stamp fileStamp
}

// FileCache is a bounded LRU cache whose entries are tied to a file on disk.
// An entry is only returned while the file's modification time and size are
// unchanged. Safe for concurrent use.
type FileCache[K comparable, V any] struct {
	items *lru.Cache[K, cacheEntry[V]]
}

// NewFileCache creates a cache holding at most size entries
func NewFileCache[K comparable, V any](size int) (*FileCache[K, V], error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	items, err := lru.New[K, cacheEntry[V]](size)
	if err != nil {
		return nil, err
	}
	return &FileCache[K, V]{items: items}, nil
}

// MustFileCache is NewFileCache for sizes known to be valid
func MustFileCache[K comparable, V any](size int) *FileCache[K, V] {
	c, err := NewFileCache[K, V](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the value stored for key if filePath has not changed since it
// was stored. Stale entries are evicted.
func (c *FileCache[K, V]) Get(key K, filePath string) (V, bool) {
	var zero V
	entry, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}
	if !entry.fresh(filePath) {
		c.items.Remove(key)
		return zero, false
	}
	return entry.value, true
}

// Lookup is Get against the file the entry was stored with
func (c *FileCache[K, V]) Lookup(key K) (V, string, bool) {
	var zero V
	entry, ok := c.items.Get(key)
	if !ok {
		return zero, "", false
	}
	if !entry.fresh(entry.path) {
		c.items.Remove(key)
		return zero, "", false
	}
	return entry.value, entry.path, true
}

func (e cacheEntry[V]) fresh(filePath string) bool {
	current, ok := stampOf(filePath)
	return ok && current.modTime.Equal(e.stamp.modTime) && current.size == e.stamp.size
}

// Set stores value for key, stamped with the current state of filePath.
// Nothing is stored when the file cannot be stat'ed.
func (c *FileCache[K, V]) Set(key K, value V, filePath string) bool {
	stamp, ok := stampOf(filePath)
	if !ok {
		return false
	}
	c.items.Add(key, cacheEntry[V]{value: value, path: filePath, stamp: stamp})
	return true
}

// Delete removes key
func (c *FileCache[K, V]) Delete(key K) {
	c.items.Remove(key)
}

// Len returns the number of cached entries
func (c *FileCache[K, V]) Len() int {
	return c.items.Len()
}
