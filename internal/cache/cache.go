// Package cache stores per-file analysis results keyed by content
// fingerprint. The cache is a pure performance optimization: it is safe to
// discard at any time, and any failure degrades to cache-disabled mode
// instead of failing the run.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"

	"github.com/nvoss/codelens/pkg/models"
)

// CacheError wraps a cache read/write failure. Callers treat it as a warning,
// not a run failure.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// Entry is one persisted cache record. Entries are read-only after creation;
// a source change produces a new fingerprint, never a mutated entry.
type Entry struct {
	Fingerprint string            `json:"fingerprint"`
	Version     string            `json:"version"`
	Result      models.FileResult `json:"result"`
}

// cacheFile is the on-disk representation: a flat fingerprint -> entry map
// plus the analyzer version that wrote it.
type cacheFile struct {
	Version string           `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// Cache is a bounded, versioned fingerprint -> FileResult store. Reads and
// writes are safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries *lru.Cache[string, Entry]
	version string
	path    string // empty: in-memory only
	enabled bool

	inflight *inflightGroup

	// touched tracks fingerprints read or written this run; Save persists
	// only these, which prunes entries for files no longer present.
	touched map[string]bool

	hits   int
	misses int
}

// Options configures cache construction.
type Options struct {
	Enabled    bool
	Path       string // optional persistence file
	MaxEntries int
	Version    string // analyzer version tag
}

// New creates a cache. A disabled cache is still a valid no-op handle.
func New(opts Options) (*Cache, error) {
	c := &Cache{
		version:  opts.Version,
		path:     opts.Path,
		enabled:  opts.Enabled,
		inflight: newInflightGroup(),
		touched:  make(map[string]bool),
	}
	if !opts.Enabled {
		return c, nil
	}

	max := opts.MaxEntries
	if max < 1 {
		max = 4096
	}
	entries, err := lru.New[string, Entry](max)
	if err != nil {
		return nil, &CacheError{Op: "init", Err: err}
	}
	c.entries = entries
	return c, nil
}

// Fingerprint computes the stable content hash used as cache key and
// change-detection signal.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for a fingerprint. A miss is never an error.
func (c *Cache) Get(fingerprint string) (models.FileResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return models.FileResult{}, false
	}

	entry, ok := c.entries.Get(fingerprint)
	if !ok || entry.Version != c.version {
		c.misses++
		return models.FileResult{}, false
	}
	c.hits++
	c.touched[fingerprint] = true
	return entry.Result, true
}

// Put stores a result under its fingerprint. Storing an existing fingerprint
// with a matching version is a no-op; a version mismatch replaces the entry.
func (c *Cache) Put(fingerprint string, result models.FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}

	c.touched[fingerprint] = true
	if existing, ok := c.entries.Get(fingerprint); ok && existing.Version == c.version {
		return
	}
	c.entries.Add(fingerprint, Entry{
		Fingerprint: fingerprint,
		Version:     c.version,
		Result:      result,
	})
}

// Compute returns the cached result for fingerprint or runs fn to produce it,
// guaranteeing at most one in-flight computation per fingerprint.
func (c *Cache) Compute(fingerprint string, fn func() (models.FileResult, error)) (models.FileResult, bool, error) {
	if result, ok := c.Get(fingerprint); ok {
		return result, true, nil
	}

	result, err := c.inflight.do(fingerprint, func() (models.FileResult, error) {
		// Re-check under the in-flight guard: a concurrent computation for
		// the same fingerprint may have landed while we waited.
		if cached, ok := c.Get(fingerprint); ok {
			return cached, nil
		}
		result, err := fn()
		if err != nil {
			return models.FileResult{}, err
		}
		c.Put(fingerprint, result)
		return result, nil
	})
	return result, false, err
}

// Stats describes cache effectiveness for one run.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Hits: c.hits, Misses: c.misses}
	if c.enabled {
		s.Entries = c.entries.Len()
	}
	return s
}

// Load reads the persisted cache file, if configured. Entries written by a
// different analyzer version are discarded wholesale. A missing file is a
// clean start; a corrupt file returns a CacheError and leaves the cache empty
// but usable. Entries for files that changed or disappeared are kept here and
// pruned at Save, once the run has shown which fingerprints are still live.
func (c *Cache) Load() error {
	if !c.isEnabled() || c.path == "" {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &CacheError{Op: "load", Err: err}
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return &CacheError{Op: "load", Err: err}
	}
	if cf.Version != c.version {
		return nil
	}

	// Insert in sorted order so LRU eviction under capacity pressure is
	// deterministic across runs.
	keys := make([]string, 0, len(cf.Entries))
	for fp := range cf.Entries {
		keys = append(keys, fp)
	}
	sort.Strings(keys)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fp := range keys {
		entry := cf.Entries[fp]
		if entry.Version != c.version {
			continue
		}
		c.entries.Add(fp, entry)
	}
	return nil
}

// Save persists the entries touched during this run, replacing the previous
// file. Entries loaded but never read back belong to files that changed or
// disappeared, so dropping them here keeps the file in step with the project.
func (c *Cache) Save() error {
	if !c.isEnabled() || c.path == "" {
		return nil
	}

	c.mu.RLock()
	cf := cacheFile{Version: c.version, Entries: make(map[string]Entry, len(c.touched))}
	for _, fp := range c.entries.Keys() {
		if !c.touched[fp] {
			continue
		}
		if entry, ok := c.entries.Peek(fp); ok {
			cf.Entries[fp] = entry
		}
	}
	c.mu.RUnlock()

	data, err := json.Marshal(cf)
	if err != nil {
		return &CacheError{Op: "save", Err: err}
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &CacheError{Op: "save", Err: err}
		}
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return &CacheError{Op: "save", Err: err}
	}
	return nil
}

// Clear drops all entries and removes the persisted file if present.
func (c *Cache) Clear() error {
	if !c.isEnabled() {
		return nil
	}

	c.mu.Lock()
	c.entries.Purge()
	c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return &CacheError{Op: "clear", Err: err}
	}
	return nil
}

// Disable switches the cache to no-op mode. Used to degrade after a
// CacheError without failing the run.
func (c *Cache) Disable() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()
}

// Enabled reports whether the cache is active.
func (c *Cache) Enabled() bool {
	return c.isEnabled()
}

func (c *Cache) isEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}
