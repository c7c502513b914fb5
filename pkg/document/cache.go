package document

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds how many parsed documents stay resident.
// Documents are large; a handful is plenty for one serving process.
const DefaultCacheSize = 8

type cachedDoc struct {
	doc     *Document
	modTime time.Time
	size    int64
}

// Cache keeps parsed documents keyed by path so repeated scans over
// the same file skip the JSON decode. Entries are invalidated when the
// file's size or mtime changes, and evicted LRU beyond the size bound.
type Cache struct {
	docs *lru.Cache[string, *cachedDoc]
	mu   sync.Mutex // serializes load-on-miss per cache, not per key
	log  *slog.Logger
}

// NewCache creates a document cache. size <= 0 uses DefaultCacheSize.
func NewCache(size int, logger *slog.Logger) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	docs, err := lru.New[string, *cachedDoc](size)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	return &Cache{docs: docs, log: logger}, nil
}

// Get returns the parsed document for path, loading it on a miss or
// when the file changed since it was cached.
func (c *Cache) Get(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document %s: %w", path, err)
	}

	if entry, ok := c.docs.Get(path); ok {
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return entry.doc, nil
		}
		c.log.Debug("document changed on disk, reloading", "path", path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another caller may have loaded it.
	if entry, ok := c.docs.Get(path); ok {
		if entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return entry.doc, nil
		}
	}

	doc, err := Load(path, c.log)
	if err != nil {
		return nil, err
	}
	c.docs.Add(path, &cachedDoc{doc: doc, modTime: info.ModTime(), size: info.Size()})
	return doc, nil
}

// Invalidate drops the cached entry for path, forcing the next Get to
// reload. Called by the file watcher on change events.
func (c *Cache) Invalidate(path string) {
	c.docs.Remove(path)
}
