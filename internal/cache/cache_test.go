package cache

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/codelens/pkg/models"
)

func newCache(t *testing.T, opts Options) *Cache {
	t.Helper()

	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func fileResult(path string) models.FileResult {
	return models.FileResult{
		Path:    path,
		Quality: models.QualityMetrics{Score: 100},
	}
}

func TestFingerprint_TracksContent(t *testing.T) {
	a := Fingerprint([]byte("function f() {}"))
	b := Fingerprint([]byte("function f() {}"))
	c := Fingerprint([]byte("function g() {}"))

	assert.Equal(t, a, b, "identical content must fingerprint identically")
	assert.NotEqual(t, a, c, "different content must fingerprint differently")
	assert.Len(t, a, 64, "hex-encoded 256-bit digest")
}

func TestCache_GetPut(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1"})

	fp := Fingerprint([]byte("source"))
	_, ok := c.Get(fp)
	assert.False(t, ok)

	c.Put(fp, fileResult("a.js"))
	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, "a.js", got.Path)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
}

func TestCache_VersionMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	old := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	old.Put(Fingerprint([]byte("source")), fileResult("a.js"))
	require.NoError(t, old.Save())

	// A new analyzer version discards the persisted file wholesale.
	fresh := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "2", Path: path})
	require.NoError(t, fresh.Load())
	_, ok := fresh.Get(Fingerprint([]byte("source")))
	assert.False(t, ok)
}

func TestCache_PersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	fp := Fingerprint([]byte("source"))

	first := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	first.Put(fp, fileResult("a.js"))
	require.NoError(t, first.Save())

	second := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	require.NoError(t, second.Load())
	got, ok := second.Get(fp)
	require.True(t, ok)
	assert.Equal(t, "a.js", got.Path)
}

func TestCache_SavePrunesUntouchedEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	stale := Fingerprint([]byte("old content"))
	live := Fingerprint([]byte("current content"))

	first := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	first.Put(stale, fileResult("old.js"))
	first.Put(live, fileResult("live.js"))
	require.NoError(t, first.Save())

	// Next run only ever reads the live entry; the stale one is pruned.
	second := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	require.NoError(t, second.Load())
	_, ok := second.Get(live)
	require.True(t, ok)
	require.NoError(t, second.Save())

	third := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	require.NoError(t, third.Load())
	_, ok = third.Get(stale)
	assert.False(t, ok, "entry untouched in the prior run should be gone")
	_, ok = third.Get(live)
	assert.True(t, ok)
}

func TestCache_CorruptFileIsWarningNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	err := c.Load()

	var cerr *CacheError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "load", cerr.Op)

	// The cache stays usable in-memory.
	fp := Fingerprint([]byte("source"))
	c.Put(fp, fileResult("a.js"))
	_, ok := c.Get(fp)
	assert.True(t, ok)
}

func TestCache_MissingFileIsCleanStart(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: filepath.Join(t.TempDir(), "absent.json")})
	assert.NoError(t, c.Load())
}

func TestCache_BoundedByMaxEntries(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 4, Version: "1"})

	sources := [][]byte{
		[]byte("one"), []byte("two"), []byte("three"),
		[]byte("four"), []byte("five"), []byte("six"),
	}
	for _, src := range sources {
		c.Put(Fingerprint(src), fileResult(string(src)+".js"))
	}

	assert.Equal(t, 4, c.Stats().Entries)

	// The most recent entries survive.
	_, ok := c.Get(Fingerprint([]byte("six")))
	assert.True(t, ok)
	_, ok = c.Get(Fingerprint([]byte("one")))
	assert.False(t, ok)
}

func TestCache_ComputeRunsOncePerFingerprint(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1"})
	fp := Fingerprint([]byte("source"))

	var calls atomic.Int32
	compute := func() (models.FileResult, error) {
		calls.Add(1)
		return fileResult("a.js"), nil
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Compute(fp, compute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent callers must share one computation")
}

func TestCache_ComputeReportsHit(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1"})
	fp := Fingerprint([]byte("source"))

	_, hit, err := c.Compute(fp, func() (models.FileResult, error) {
		return fileResult("a.js"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.Compute(fp, func() (models.FileResult, error) {
		t.Fatal("cached fingerprint must not recompute")
		return models.FileResult{}, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCache_DisabledIsNoOp(t *testing.T) {
	c := newCache(t, Options{Enabled: false, Version: "1"})
	fp := Fingerprint([]byte("source"))

	c.Put(fp, fileResult("a.js"))
	_, ok := c.Get(fp)
	assert.False(t, ok)
	assert.NoError(t, c.Save())
	assert.NoError(t, c.Load())

	// Compute still works, it just always computes.
	result, hit, err := c.Compute(fp, func() (models.FileResult, error) {
		return fileResult("a.js"), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "a.js", result.Path)
}

func TestCache_DisableMidRun(t *testing.T) {
	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1"})
	fp := Fingerprint([]byte("source"))
	c.Put(fp, fileResult("a.js"))

	// Disable may race with readers; exercise both sides concurrently so the
	// race detector can observe the synchronization.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 100 {
			c.Get(fp)
			c.Put(fp, fileResult("a.js"))
		}
	}()
	go func() {
		defer wg.Done()
		c.Disable()
	}()
	wg.Wait()

	assert.False(t, c.Enabled())
	_, ok := c.Get(fp)
	assert.False(t, ok, "a disabled cache never reports hits")
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c := newCache(t, Options{Enabled: true, MaxEntries: 16, Version: "1", Path: path})
	c.Put(Fingerprint([]byte("source")), fileResult("a.js"))
	require.NoError(t, c.Save())
	require.NoError(t, c.Clear())

	assert.Equal(t, 0, c.Stats().Entries)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
